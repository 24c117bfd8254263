package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"phacetnode/internal/engine/actions"
	"phacetnode/internal/pkg/errors"
	"phacetnode/internal/platform/models"
)

// executeRequestSchema is the node-parameter contract the host is held
// to. Structural problems are rejected here; field-level requirements
// that depend on the operation are the dispatcher's job.
const executeRequestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "resource": {"type": "string", "enum": ["row", "file"]},
    "operation": {"type": "string", "enum": ["create", "update", "get", "getCellDownloadUrl"]},
    "continue_on_fail": {"type": "boolean", "default": false},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "params": {"type": "object"},
          "binary": {
            "type": "object",
            "additionalProperties": {
              "type": "object",
              "properties": {
                "data": {"type": "string"},
                "file_name": {"type": "string"},
                "mime_type": {"type": "string"}
              },
              "required": ["data", "file_name"]
            }
          }
        },
        "required": ["params"]
      }
    }
  },
  "required": ["resource", "operation", "items"]
}`

type ActionHandler struct {
	dispatcher *actions.Dispatcher
	schema     *jsonschema.Schema
}

func NewActionHandler(dispatcher *actions.Dispatcher) (*ActionHandler, error) {
	c := jsonschema.NewCompiler()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(executeRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("unmarshal execute schema: %w", err)
	}
	if err := c.AddResource("phacetnode://schemas/execute.json", doc); err != nil {
		return nil, fmt.Errorf("add execute schema resource: %w", err)
	}
	compiled, err := c.Compile("phacetnode://schemas/execute.json")
	if err != nil {
		return nil, fmt.Errorf("compile execute schema: %w", err)
	}

	return &ActionHandler{dispatcher: dispatcher, schema: compiled}, nil
}

func (h *ActionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unable to read request body", nil)
		return
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := h.schema.Validate(doc); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Request does not match the execute schema", err.Error())
		return
	}

	var req models.ExecuteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	results, err := h.dispatcher.Execute(r.Context(), req)
	if err != nil {
		status, code := errors.StatusFor(err)
		errors.WriteError(w, status, code, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Results []models.ActionResult `json:"results"`
	}{Results: results})
}
