package handlers

import (
	"encoding/json"
	"net/http"

	"phacetnode/internal/engine/trigger"
	"phacetnode/internal/pkg/errors"
	"phacetnode/internal/platform/config"
)

type SubscriptionHandler struct {
	lifecycle *trigger.Lifecycle
	defaults  config.TriggerConfig
}

func NewSubscriptionHandler(lifecycle *trigger.Lifecycle, defaults config.TriggerConfig) *SubscriptionHandler {
	return &SubscriptionHandler{lifecycle: lifecycle, defaults: defaults}
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NodeID             string `json:"node_id"`
		EventType          string `json:"event_type"`
		TableID            string `json:"table_id"`
		Enrich             bool   `json:"enrich"`
		KeepRemoteEndpoint *bool  `json:"keep_remote_endpoint"`
		Description        string `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	keepRemote := h.defaults.KeepRemoteEndpoint
	if req.KeepRemoteEndpoint != nil {
		keepRemote = *req.KeepRemoteEndpoint
	}
	description := req.Description
	if description == "" {
		description = h.defaults.Description
	}

	cfg := trigger.Config{
		EventType:          req.EventType,
		TableID:            req.TableID,
		Enrich:             req.Enrich,
		KeepRemoteEndpoint: keepRemote,
		Description:        description,
	}

	sub, err := h.lifecycle.Create(r.Context(), req.NodeID, cfg)
	if err != nil {
		status, code := errors.StatusFor(err)
		errors.WriteError(w, status, code, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionHandler) CheckExists(w http.ResponseWriter, r *http.Request) {
	nodeID := routeParam(r, "node_id")

	cfg := trigger.Config{
		EventType: r.URL.Query().Get("event_type"),
		TableID:   r.URL.Query().Get("table_id"),
	}

	exists, err := h.lifecycle.CheckExists(r.Context(), nodeID, cfg)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Exists bool `json:"exists"`
	}{Exists: exists})
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	nodeID := routeParam(r, "node_id")

	if err := h.lifecycle.Delete(r.Context(), nodeID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "deleted"})
}
