package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"phacetnode/internal/platform/config"
	"phacetnode/internal/platform/models"
)

// Emitter hands filtered records to the workflow engine. Tests use a
// fake; production forwards over HTTP.
type Emitter interface {
	Emit(ctx context.Context, nodeID string, records []models.OutputRecord) error
}

// EngineForwarder posts records to the engine callback URL, signing the
// body with the shared engine secret when one is configured.
type EngineForwarder struct {
	callbackURL string
	secret      string
	httpClient  *http.Client
}

func NewEngineForwarder(cfg config.EngineConfig) *EngineForwarder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EngineForwarder{
		callbackURL: cfg.CallbackURL,
		secret:      cfg.Secret,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (f *EngineForwarder) Emit(ctx context.Context, nodeID string, records []models.OutputRecord) error {
	if f.callbackURL == "" {
		return fmt.Errorf("no engine callback URL configured")
	}

	payload, err := json.Marshal(struct {
		NodeID  string                `json:"node_id"`
		Records []models.OutputRecord `json:"records"`
	}{NodeID: nodeID, Records: records})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.callbackURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Phacetnode-Node", nodeID)
	req.Header.Set("X-Phacetnode-Delivery", uuid.New().String())
	if f.secret != "" {
		req.Header.Set("X-Phacetnode-Signature", Sign(f.secret, payload))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("engine callback returned HTTP %d", resp.StatusCode)
	}
	return nil
}
