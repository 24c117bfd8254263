// Package actions executes the row/file action node: one outbound call
// (or an upload plus one call) per input item against the Phacet API.
package actions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"phacetnode/internal/phacet"
	"phacetnode/internal/pkg/errors"
	"phacetnode/internal/platform/models"
)

// API is the slice of the Phacet client the dispatcher needs.
// *phacet.Client satisfies it; tests use a fake.
type API interface {
	CreateRow(ctx context.Context, tableID, sessionID string, cells []phacet.CellValue) (map[string]any, error)
	UpdateRow(ctx context.Context, tableID, rowID string, cells []phacet.CellValue) (map[string]any, error)
	GetRow(ctx context.Context, tableID, rowID string) (map[string]any, error)
	GetCellDownloadURL(ctx context.Context, tableID, cellID string) (map[string]any, error)
	UploadFile(ctx context.Context, filename, contentType string, payload []byte) (string, error)
}

// Resources and operations the dispatcher knows.
const (
	ResourceRow  = "row"
	ResourceFile = "file"

	OpCreate             = "create"
	OpUpdate             = "update"
	OpGet                = "get"
	OpGetCellDownloadURL = "getCellDownloadUrl"
)

type opKey struct {
	resource  string
	operation string
}

type handler func(ctx context.Context, d *Dispatcher, idx int, item models.ActionItem) (map[string]any, error)

type Dispatcher struct {
	api      API
	handlers map[opKey]handler
}

func NewDispatcher(api API) *Dispatcher {
	d := &Dispatcher{api: api}
	d.handlers = map[opKey]handler{
		{ResourceRow, OpCreate}:              rowCreate,
		{ResourceRow, OpUpdate}:              rowUpdate,
		{ResourceRow, OpGet}:                 rowGet,
		{ResourceFile, OpGetCellDownloadURL}: cellDownloadURL,
	}
	return d
}

// Execute runs the selected operation once per input item, sequentially.
// With ContinueOnFail a failed item becomes an inline error result and the
// batch carries on; otherwise the first failure aborts the whole call.
func (d *Dispatcher) Execute(ctx context.Context, req models.ExecuteRequest) ([]models.ActionResult, error) {
	h, ok := d.handlers[opKey{req.Resource, req.Operation}]
	if !ok {
		return nil, errors.NewValidationf("unknown operation %s.%s", req.Resource, req.Operation)
	}
	if len(req.Items) == 0 {
		return nil, errors.NewValidation("no input items")
	}

	results := make([]models.ActionResult, 0, len(req.Items))
	for idx, item := range req.Items {
		data, err := h(ctx, d, idx, item)
		if err != nil {
			if !req.ContinueOnFail {
				return nil, err
			}
			log.Warn().Err(err).Int("item", idx).
				Str("resource", req.Resource).Str("operation", req.Operation).
				Msg("action item failed, continuing")
			results = append(results, models.ActionResult{Item: idx, Error: err.Error()})
			continue
		}
		results = append(results, models.ActionResult{Item: idx, Data: data})
	}
	return results, nil
}

func requireField(idx int, name, value string) error {
	if value == "" {
		return errors.NewItemValidation(idx, fmt.Sprintf("missing required field %q", name))
	}
	return nil
}
