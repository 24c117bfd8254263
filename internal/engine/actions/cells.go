package actions

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"phacetnode/internal/phacet"
	"phacetnode/internal/pkg/errors"
	"phacetnode/internal/platform/models"
)

// Only PDF uploads are accepted by the remote files endpoint.
const allowedUploadExt = ".pdf"

// resolveCells turns the item's cells into wire values, uploading binary
// file cells first. Resolution is per-cell and sequential so the outbound
// cell order matches the input order.
func (d *Dispatcher) resolveCells(ctx context.Context, idx int, item models.ActionItem) ([]phacet.CellValue, error) {
	cells := item.Params.Cells
	resolved := make([]phacet.CellValue, 0, len(cells))

	for _, cell := range cells {
		if err := cell.Validate(); err != nil {
			return nil, errors.NewItemValidation(idx, err.Error())
		}

		switch cell.Kind {
		case models.ValueKindText:
			resolved = append(resolved, phacet.CellValue{ColumnID: cell.ColumnID, Value: cell.Text})

		case models.ValueKindFile:
			if cell.File.FileID != "" {
				resolved = append(resolved, phacet.CellValue{ColumnID: cell.ColumnID, Value: cell.File.FileID})
				continue
			}

			fileID, err := d.uploadBinary(ctx, idx, item, cell)
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, phacet.CellValue{ColumnID: cell.ColumnID, Value: fileID})
		}
	}
	return resolved, nil
}

func (d *Dispatcher) uploadBinary(ctx context.Context, idx int, item models.ActionItem, cell models.Cell) (string, error) {
	prop := cell.File.BinaryProperty
	bin, ok := item.Binary[prop]
	if !ok {
		return "", errors.NewItemValidation(idx,
			fmt.Sprintf("cell %s: no binary data under property %q", cell.ColumnID, prop))
	}

	if !strings.EqualFold(filepath.Ext(bin.FileName), allowedUploadExt) {
		return "", errors.NewItemValidation(idx,
			fmt.Sprintf("cell %s: only %s files can be uploaded, got %q", cell.ColumnID, allowedUploadExt, bin.FileName))
	}

	payload, err := bin.Bytes()
	if err != nil {
		return "", errors.NewItemValidation(idx,
			fmt.Sprintf("cell %s: binary property %q is not valid base64", cell.ColumnID, prop))
	}

	contentType := bin.MimeType
	if contentType == "" {
		contentType = "application/pdf"
	}

	return d.api.UploadFile(ctx, bin.FileName, contentType, payload)
}
