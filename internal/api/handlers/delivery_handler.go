package handlers

import (
	"database/sql"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"phacetnode/internal/engine/trigger"
	"phacetnode/internal/pkg/errors"
)

const signatureHeader = "X-Phacet-Signature"

// DeliveryHandler receives the remote service's webhook deliveries and
// runs them through the filter/enrich pipeline. A delivery that passes
// the filters is forwarded to the engine; every delivery is acknowledged.
type DeliveryHandler struct {
	store    trigger.SubscriptionStore
	pipeline *trigger.Pipeline
	emitter  trigger.Emitter
}

func NewDeliveryHandler(store trigger.SubscriptionStore, pipeline *trigger.Pipeline, emitter trigger.Emitter) *DeliveryHandler {
	return &DeliveryHandler{store: store, pipeline: pipeline, emitter: emitter}
}

func (h *DeliveryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	nodeID := routeParam(r, "node_id")

	sub, err := h.store.GetByNodeID(nodeID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "No subscription for this endpoint", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}

	body, err := readBody(r)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unable to read delivery body", nil)
		return
	}

	if sub.Secret != "" {
		if !trigger.VerifySignature(sub.Secret, body, r.Header.Get(signatureHeader)) {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid delivery signature", nil)
			return
		}
	}

	records, err := h.pipeline.Process(r.Context(), sub, body)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	if len(records) > 0 {
		// The delivery is acknowledged either way; the remote service
		// does not redeliver on our behalf.
		if err := h.emitter.Emit(r.Context(), nodeID, records); err != nil {
			log.Error().Err(err).Str("node", nodeID).Msg("failed to forward records to engine")
		}
	}

	writeJSON(w, http.StatusAccepted, struct {
		Records int `json:"records"`
	}{Records: len(records)})
}
