package actions

import (
	"context"

	"phacetnode/internal/pkg/errors"
	"phacetnode/internal/platform/models"
)

func rowCreate(ctx context.Context, d *Dispatcher, idx int, item models.ActionItem) (map[string]any, error) {
	p := item.Params
	if err := requireField(idx, "table_id", p.TableID); err != nil {
		return nil, err
	}
	if err := requireField(idx, "session_id", p.SessionID); err != nil {
		return nil, err
	}
	if len(p.Cells) == 0 {
		return nil, errors.NewItemValidation(idx, "at least one cell is required")
	}

	cells, err := d.resolveCells(ctx, idx, item)
	if err != nil {
		return nil, err
	}

	return d.api.CreateRow(ctx, p.TableID, p.SessionID, cells)
}

func rowUpdate(ctx context.Context, d *Dispatcher, idx int, item models.ActionItem) (map[string]any, error) {
	p := item.Params
	if err := requireField(idx, "table_id", p.TableID); err != nil {
		return nil, err
	}
	if err := requireField(idx, "row_id", p.RowID); err != nil {
		return nil, err
	}
	if len(p.Cells) == 0 {
		return nil, errors.NewItemValidation(idx, "at least one cell is required")
	}

	cells, err := d.resolveCells(ctx, idx, item)
	if err != nil {
		return nil, err
	}

	return d.api.UpdateRow(ctx, p.TableID, p.RowID, cells)
}

func rowGet(ctx context.Context, d *Dispatcher, idx int, item models.ActionItem) (map[string]any, error) {
	p := item.Params
	if err := requireField(idx, "table_id", p.TableID); err != nil {
		return nil, err
	}
	if err := requireField(idx, "row_id", p.RowID); err != nil {
		return nil, err
	}

	return d.api.GetRow(ctx, p.TableID, p.RowID)
}

func cellDownloadURL(ctx context.Context, d *Dispatcher, idx int, item models.ActionItem) (map[string]any, error) {
	p := item.Params
	if err := requireField(idx, "table_id", p.TableID); err != nil {
		return nil, err
	}
	if err := requireField(idx, "cell_id", p.CellID); err != nil {
		return nil, err
	}

	return d.api.GetCellDownloadURL(ctx, p.TableID, p.CellID)
}
