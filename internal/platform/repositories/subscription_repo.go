package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"phacetnode/internal/platform/models"
)

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = "sub_" + uuid.New().String()
	}
	sub.CreatedAt = time.Now().Unix()
	sub.UpdatedAt = sub.CreatedAt

	query := `
		INSERT INTO subscriptions (id, node_id, endpoint_id, secret, callback_url, event_type, table_id, enrich, keep_remote, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, sub.ID, sub.NodeID, sub.EndpointID, sub.Secret, sub.CallbackURL,
		sub.EventType, sub.TableID, sub.Enrich, sub.KeepRemote, sub.CreatedAt, sub.UpdatedAt)
	return err
}

func (r *SubscriptionRepository) GetByNodeID(nodeID string) (*models.Subscription, error) {
	query := `SELECT id, node_id, endpoint_id, secret, callback_url, event_type, table_id, enrich, keep_remote, created_at, updated_at FROM subscriptions WHERE node_id = ?`
	row := r.db.QueryRow(query, nodeID)

	var s models.Subscription
	var endpointID sql.NullString
	var secret sql.NullString
	var tableID sql.NullString

	err := row.Scan(&s.ID, &s.NodeID, &endpointID, &secret, &s.CallbackURL, &s.EventType,
		&tableID, &s.Enrich, &s.KeepRemote, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if endpointID.Valid {
		s.EndpointID = endpointID.String
	}
	if secret.Valid {
		s.Secret = secret.String
	}
	if tableID.Valid {
		s.TableID = tableID.String
	}

	return &s, nil
}

func (r *SubscriptionRepository) List() ([]*models.Subscription, error) {
	query := `SELECT id, node_id, endpoint_id, secret, callback_url, event_type, table_id, enrich, keep_remote, created_at, updated_at FROM subscriptions ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		var s models.Subscription
		var endpointID sql.NullString
		var secret sql.NullString
		var tableID sql.NullString

		if err := rows.Scan(&s.ID, &s.NodeID, &endpointID, &secret, &s.CallbackURL, &s.EventType,
			&tableID, &s.Enrich, &s.KeepRemote, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}

		if endpointID.Valid {
			s.EndpointID = endpointID.String
		}
		if secret.Valid {
			s.Secret = secret.String
		}
		if tableID.Valid {
			s.TableID = tableID.String
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

func (r *SubscriptionRepository) DeleteByNodeID(nodeID string) error {
	_, err := r.db.Exec(`DELETE FROM subscriptions WHERE node_id = ?`, nodeID)
	return err
}
