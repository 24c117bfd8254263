package models

import (
	"encoding/base64"
	"fmt"
)

// ValueKind discriminates the two cell value variants.
type ValueKind string

const (
	ValueKindText ValueKind = "text"
	ValueKindFile ValueKind = "file"
)

// FileRef points at a file value, either an already-uploaded file
// (FileID set) or a binary property on the input item to upload first
// (BinaryProperty set). Exactly one of the two is populated.
type FileRef struct {
	FileID         string `json:"file_id,omitempty"`
	BinaryProperty string `json:"binary_property,omitempty"`
}

// Cell is one column value for a row write. Kind selects which of
// Text/File carries the value.
type Cell struct {
	ColumnID string    `json:"column_id"`
	Kind     ValueKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	File     *FileRef  `json:"file,omitempty"`
}

func NewTextCell(columnID, value string) Cell {
	return Cell{ColumnID: columnID, Kind: ValueKindText, Text: value}
}

func NewFileCell(columnID string, ref FileRef) Cell {
	return Cell{ColumnID: columnID, Kind: ValueKindFile, File: &ref}
}

// Validate enforces the exactly-one-of shape at construction time rather
// than at use.
func (c Cell) Validate() error {
	if c.ColumnID == "" {
		return fmt.Errorf("cell is missing column_id")
	}
	switch c.Kind {
	case ValueKindText:
		if c.File != nil {
			return fmt.Errorf("cell %s: text cell must not carry a file reference", c.ColumnID)
		}
	case ValueKindFile:
		if c.File == nil {
			return fmt.Errorf("cell %s: file cell is missing its file reference", c.ColumnID)
		}
		if (c.File.FileID == "") == (c.File.BinaryProperty == "") {
			return fmt.Errorf("cell %s: file reference needs exactly one of file_id or binary_property", c.ColumnID)
		}
	default:
		return fmt.Errorf("cell %s: unknown value kind %q", c.ColumnID, c.Kind)
	}
	return nil
}

// BinaryData is host-convention binary payload attached to an input item,
// base64-encoded on the wire.
type BinaryData struct {
	Data     string `json:"data"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
}

func (b BinaryData) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(b.Data)
}

// ActionParams are the per-item parameters of an action invocation.
// Which fields are required depends on the operation.
type ActionParams struct {
	TableID   string `json:"table_id"`
	SessionID string `json:"session_id,omitempty"`
	RowID     string `json:"row_id,omitempty"`
	CellID    string `json:"cell_id,omitempty"`
	Cells     []Cell `json:"cells,omitempty"`
}

// ActionItem is one input item of a batch action invocation.
type ActionItem struct {
	Params ActionParams          `json:"params"`
	Binary map[string]BinaryData `json:"binary,omitempty"`
}

// ExecuteRequest is the host's action-node invocation.
type ExecuteRequest struct {
	Resource       string       `json:"resource"`
	Operation      string       `json:"operation"`
	ContinueOnFail bool         `json:"continue_on_fail"`
	Items          []ActionItem `json:"items"`
}

// ActionResult is the outcome for one input item. Exactly one of
// Data/Error is set; failures only appear inline when the caller asked
// to continue on fail.
type ActionResult struct {
	Item  int            `json:"item"`
	Data  map[string]any `json:"data,omitempty"`
	Error string         `json:"error,omitempty"`
}
