package models

// Subscription is the locally persisted webhook registration owned by one
// trigger node instance. Created on activation, cleared on deactivation.
type Subscription struct {
	ID          string `json:"id"`
	NodeID      string `json:"node_id"`
	EndpointID  string `json:"endpoint_id,omitempty"`
	Secret      string `json:"-"`
	CallbackURL string `json:"callback_url"`
	EventType   string `json:"event_type"`
	TableID     string `json:"table_id,omitempty"` // empty means all tables
	Enrich      bool   `json:"enrich"`
	KeepRemote  bool   `json:"keep_remote_endpoint"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Matches reports whether the stored registration still reflects the
// given configuration. A mismatch means the host must re-activate.
func (s *Subscription) Matches(callbackURL, eventType, tableID string) bool {
	return s.CallbackURL == callbackURL && s.EventType == eventType && s.TableID == tableID
}
