package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	apiContext "phacetnode/internal/api/context"
	"phacetnode/internal/engine/trigger"
	"phacetnode/internal/platform/models"
)

type fakeStore struct {
	sub *models.Subscription
}

func (s *fakeStore) Create(sub *models.Subscription) error { return nil }
func (s *fakeStore) DeleteByNodeID(nodeID string) error    { return nil }

func (s *fakeStore) GetByNodeID(nodeID string) (*models.Subscription, error) {
	if s.sub == nil || s.sub.NodeID != nodeID {
		return nil, sql.ErrNoRows
	}
	return s.sub, nil
}

type fakeEmitter struct {
	emitted [][]models.OutputRecord
}

func (e *fakeEmitter) Emit(ctx context.Context, nodeID string, records []models.OutputRecord) error {
	e.emitted = append(e.emitted, records)
	return nil
}

type noFetch struct{}

func (noFetch) GetRow(ctx context.Context, tableID, rowID string) (map[string]any, error) {
	return nil, sql.ErrNoRows
}

func deliveryRequest(nodeID string, body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/hooks/phacet/"+nodeID, bytes.NewReader(body))
	params := httprouter.Params{{Key: "node_id", Value: nodeID}}
	ctx := context.WithValue(req.Context(), apiContext.Params, params)
	return req.WithContext(ctx)
}

func TestDeliveryHandler_EmitsMatchingEvent(t *testing.T) {
	store := &fakeStore{sub: &models.Subscription{
		NodeID:    "n1",
		EventType: models.EventRowCreated,
	}}
	emitter := &fakeEmitter{}
	h := NewDeliveryHandler(store, trigger.NewPipeline(noFetch{}), emitter)

	body := []byte(`{"eventType":"row.created","eventId":"e1","data":{"rowId":"r1"}}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, deliveryRequest("n1", body))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(emitter.emitted) != 1 || len(emitter.emitted[0]) != 1 {
		t.Errorf("Expected one emitted record, got %+v", emitter.emitted)
	}

	var resp struct {
		Records int `json:"records"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Records != 1 {
		t.Errorf("Expected records=1 in response, got %d", resp.Records)
	}
}

func TestDeliveryHandler_FilteredEventAckedWithoutEmit(t *testing.T) {
	store := &fakeStore{sub: &models.Subscription{
		NodeID:    "n1",
		EventType: models.EventRowCalculationCompleted,
	}}
	emitter := &fakeEmitter{}
	h := NewDeliveryHandler(store, trigger.NewPipeline(noFetch{}), emitter)

	body := []byte(`{"eventType":"row.created","eventId":"e1","data":{}}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, deliveryRequest("n1", body))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected filtered delivery to still be acknowledged, got %d", rec.Code)
	}
	if len(emitter.emitted) != 0 {
		t.Errorf("Expected no emission for filtered event, got %+v", emitter.emitted)
	}
}

func TestDeliveryHandler_UnknownNode(t *testing.T) {
	h := NewDeliveryHandler(&fakeStore{}, trigger.NewPipeline(noFetch{}), &fakeEmitter{})

	rec := httptest.NewRecorder()
	h.Handle(rec, deliveryRequest("ghost", []byte(`{}`)))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown node, got %d", rec.Code)
	}
}

func TestDeliveryHandler_SignatureCheck(t *testing.T) {
	store := &fakeStore{sub: &models.Subscription{
		NodeID:    "n1",
		EventType: models.EventRowCreated,
		Secret:    "whsec",
	}}
	emitter := &fakeEmitter{}
	h := NewDeliveryHandler(store, trigger.NewPipeline(noFetch{}), emitter)

	body := []byte(`{"eventType":"row.created","eventId":"e1","data":{}}`)

	rec := httptest.NewRecorder()
	h.Handle(rec, deliveryRequest("n1", body))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for missing signature, got %d", rec.Code)
	}

	req := deliveryRequest("n1", body)
	req.Header.Set("X-Phacet-Signature", trigger.Sign("whsec", body))
	rec = httptest.NewRecorder()
	h.Handle(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected 202 for valid signature, got %d", rec.Code)
	}
	if len(emitter.emitted) != 1 {
		t.Errorf("Expected one emission after signed delivery, got %d", len(emitter.emitted))
	}
}

func TestDeliveryHandler_MalformedBody(t *testing.T) {
	store := &fakeStore{sub: &models.Subscription{NodeID: "n1", EventType: models.EventRowCreated}}
	h := NewDeliveryHandler(store, trigger.NewPipeline(noFetch{}), &fakeEmitter{})

	rec := httptest.NewRecorder()
	h.Handle(rec, deliveryRequest("n1", []byte("{broken")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
	}
}
