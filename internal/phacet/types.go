// Package phacet is the client for the Phacet tabular-data API. The API
// is consumed as a fixed black box; these types mirror its wire shapes.
package phacet

type Project struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Tables []Table `json:"tables"`
}

type Table struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Sessions []Session `json:"sessions,omitempty"`
	Columns  []Column  `json:"columns,omitempty"`
}

type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Column struct {
	ID         string `json:"id"`
	ColumnName string `json:"columnName"`
}

// CellValue is one column value as the rows endpoints expect it. File
// cells carry the uploaded file id as their value.
type CellValue struct {
	ColumnID string `json:"columnId"`
	Value    string `json:"value"`
}

type createRowRequest struct {
	SessionID string      `json:"sessionId"`
	Cells     []CellValue `json:"cells"`
}

type updateRowRequest struct {
	Cells []CellValue `json:"cells"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

// EndpointRegistration is the webhook registration body.
type EndpointRegistration struct {
	URL         string   `json:"url"`
	EventTypes  []string `json:"eventTypes"`
	TableIDs    []string `json:"tableIds,omitempty"`
	Description string   `json:"description"`
}

// Endpoint is the registration response. The service has answered with
// either "endpointId" or "id" across versions, so both are accepted.
type Endpoint struct {
	EndpointID string `json:"endpointId"`
	ID         string `json:"id"`
	Secret     string `json:"secret"`
}

// EffectiveID returns whichever endpoint identifier the response carried.
func (e *Endpoint) EffectiveID() string {
	if e.EndpointID != "" {
		return e.EndpointID
	}
	return e.ID
}
