package handlers

import (
	"context"
	"net/http"

	"phacetnode/internal/phacet"
	"phacetnode/internal/pkg/errors"
)

// Catalog is the slice of the Phacet client that backs dynamic option
// lists. *phacet.Client satisfies it.
type Catalog interface {
	ListProjects(ctx context.Context) ([]phacet.Project, error)
	GetTable(ctx context.Context, tableID string) (*phacet.Table, error)
}

// Option is one dropdown entry for the host UI.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type OptionsHandler struct {
	catalog Catalog
}

func NewOptionsHandler(catalog Catalog) *OptionsHandler {
	return &OptionsHandler{catalog: catalog}
}

func (h *OptionsHandler) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.catalog.ListProjects(r.Context())
	if err != nil {
		writeOptionsError(w, err)
		return
	}

	options := make([]Option, 0, len(projects))
	for _, p := range projects {
		options = append(options, Option{Name: p.Name, Value: p.ID})
	}
	writeJSON(w, http.StatusOK, options)
}

func (h *OptionsHandler) Tables(w http.ResponseWriter, r *http.Request) {
	projects, err := h.catalog.ListProjects(r.Context())
	if err != nil {
		writeOptionsError(w, err)
		return
	}

	projectFilter := r.URL.Query().Get("project_id")

	var options []Option
	for _, p := range projects {
		if projectFilter != "" && p.ID != projectFilter {
			continue
		}
		for _, t := range p.Tables {
			options = append(options, Option{Name: p.Name + " / " + t.Name, Value: t.ID})
		}
	}
	writeJSON(w, http.StatusOK, options)
}

func (h *OptionsHandler) Columns(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table_id")
	if tableID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "table_id query parameter is required", nil)
		return
	}

	table, err := h.catalog.GetTable(r.Context(), tableID)
	if err != nil {
		writeOptionsError(w, err)
		return
	}

	options := make([]Option, 0, len(table.Columns))
	for _, c := range table.Columns {
		options = append(options, Option{Name: c.ColumnName, Value: c.ID})
	}
	writeJSON(w, http.StatusOK, options)
}

// Sessions are only exposed nested inside the projects listing, so the
// table is located by scanning it.
func (h *OptionsHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table_id")
	if tableID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "table_id query parameter is required", nil)
		return
	}

	projects, err := h.catalog.ListProjects(r.Context())
	if err != nil {
		writeOptionsError(w, err)
		return
	}

	options := []Option{}
	for _, p := range projects {
		for _, t := range p.Tables {
			if t.ID != tableID {
				continue
			}
			for _, s := range t.Sessions {
				options = append(options, Option{Name: s.Name, Value: s.ID})
			}
		}
	}
	writeJSON(w, http.StatusOK, options)
}

func writeOptionsError(w http.ResponseWriter, err error) {
	status, code := errors.StatusFor(err)
	errors.WriteError(w, status, code, err.Error(), nil)
}
