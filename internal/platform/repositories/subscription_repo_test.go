package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"phacetnode/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	query := `
	CREATE TABLE subscriptions (
		id TEXT PRIMARY KEY,
		node_id TEXT UNIQUE NOT NULL,
		endpoint_id TEXT,
		secret TEXT,
		callback_url TEXT NOT NULL,
		event_type TEXT NOT NULL,
		table_id TEXT,
		enrich INTEGER DEFAULT 0,
		keep_remote INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return db
}

func TestSubscriptionRepository_CreateAndGet(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))

	sub := &models.Subscription{
		NodeID:      "n1",
		EndpointID:  "ep1",
		Secret:      "whsec",
		CallbackURL: "https://nodes.example.com/hooks/phacet/n1",
		EventType:   models.EventRowCreated,
		TableID:     "T1",
		Enrich:      true,
	}

	if err := repo.Create(sub); err != nil {
		t.Fatalf("Failed to create subscription: %v", err)
	}
	if sub.ID == "" {
		t.Error("Expected generated subscription id")
	}

	fetched, err := repo.GetByNodeID("n1")
	if err != nil {
		t.Fatalf("Failed to get subscription: %v", err)
	}
	if fetched.EndpointID != "ep1" || fetched.Secret != "whsec" || fetched.TableID != "T1" {
		t.Errorf("Fetched subscription does not match: %+v", fetched)
	}
	if !fetched.Enrich {
		t.Error("Expected enrich flag persisted")
	}
}

func TestSubscriptionRepository_Delete(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))

	sub := &models.Subscription{
		NodeID:      "n1",
		CallbackURL: "https://nodes.example.com/hooks/phacet/n1",
		EventType:   models.EventRowCreated,
	}
	if err := repo.Create(sub); err != nil {
		t.Fatalf("Failed to create subscription: %v", err)
	}

	if err := repo.DeleteByNodeID("n1"); err != nil {
		t.Fatalf("Failed to delete subscription: %v", err)
	}

	if _, err := repo.GetByNodeID("n1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Expected sql.ErrNoRows after delete, got %v", err)
	}
}

func TestSubscriptionRepository_List(t *testing.T) {
	repo := NewSubscriptionRepository(setupTestDB(t))

	for i := 0; i < 3; i++ {
		sub := &models.Subscription{
			NodeID:      fmt.Sprintf("n%d", i),
			CallbackURL: "https://nodes.example.com/hooks/phacet/x",
			EventType:   models.EventRowCreated,
		}
		if err := repo.Create(sub); err != nil {
			t.Fatalf("Failed to create subscription %d: %v", i, err)
		}
	}

	subs, err := repo.List()
	if err != nil {
		t.Fatalf("Failed to list subscriptions: %v", err)
	}
	if len(subs) != 3 {
		t.Errorf("Expected 3 subscriptions, got %d", len(subs))
	}
}

func TestSubscriptionRepository_CreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO subscriptions").WillReturnError(fmt.Errorf("disk full"))

	repo := NewSubscriptionRepository(db)
	sub := &models.Subscription{
		NodeID:      "n1",
		CallbackURL: "https://nodes.example.com/hooks/phacet/n1",
		EventType:   models.EventRowCreated,
	}
	if err := repo.Create(sub); err == nil {
		t.Error("Expected create to surface the database error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}
