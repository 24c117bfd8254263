package models

import "testing"

func TestCellValidate(t *testing.T) {
	tests := []struct {
		name    string
		cell    Cell
		wantErr bool
	}{
		{"text cell", NewTextCell("c1", "x"), false},
		{"file cell with id", NewFileCell("c1", FileRef{FileID: "f1"}), false},
		{"file cell with binary source", NewFileCell("c1", FileRef{BinaryProperty: "data"}), false},
		{"missing column", Cell{Kind: ValueKindText, Text: "x"}, true},
		{"text cell with file ref", Cell{ColumnID: "c1", Kind: ValueKindText, File: &FileRef{FileID: "f1"}}, true},
		{"file cell without ref", Cell{ColumnID: "c1", Kind: ValueKindFile}, true},
		{"file cell with both sources", NewFileCell("c1", FileRef{FileID: "f1", BinaryProperty: "data"}), true},
		{"file cell with neither source", NewFileCell("c1", FileRef{}), true},
		{"unknown kind", Cell{ColumnID: "c1", Kind: "blob"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cell.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKnownEventType(t *testing.T) {
	for _, e := range []string{
		EventRowCalculationCompleted,
		EventRowCalculationFailed,
		EventRowCalculationStarted,
		EventRowCreated,
		EventPhacetCreated,
	} {
		if !KnownEventType(e) {
			t.Errorf("Expected %s to be recognized", e)
		}
	}
	if KnownEventType("row.exploded") {
		t.Error("Expected unrecognized event type to be rejected")
	}
}

func TestBinaryDataBytes(t *testing.T) {
	b := BinaryData{Data: "JVBERi0xLjQ=", FileName: "doc.pdf"}
	payload, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if string(payload) != "%PDF-1.4" {
		t.Errorf("Unexpected decoded payload %q", payload)
	}

	if _, err := (BinaryData{Data: "!!!"}).Bytes(); err == nil {
		t.Error("Expected error for invalid base64")
	}
}
