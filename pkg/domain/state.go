package domain

// State identifies the dialogue state a session is in.
type State string

const (
	StateAuthorization     State = "authorization"
	StateConsentProcessing State = "consent_processing"
	StateInputPhone        State = "input_phone"
	StateInputAddress      State = "input_address"
	StateMainMenu          State = "main_menu"
	StateBuildingCake      State = "building_cake"
	StateInputInscription  State = "input_inscription"
	StateCakeReady         State = "cake_ready"
	StateOrderReview       State = "order_review"
	StateChangePhone       State = "change_phone"
	StateChangeAddress     State = "change_address"
	StateOrderDetails      State = "order_details"
)

// Session is the per-identity conversation snapshot. Everything that used to
// be a process-wide "current cake / current category" variable lives here,
// keyed by the session identity, so concurrent customers never share state.
type Session struct {
	// State is the dialogue state the next inbound event will be handled in.
	State State `json:"state"`

	// DraftCakeID is the uncommitted cake of an in-progress traversal.
	// Empty outside the cake-building flow. At most one per customer.
	DraftCakeID string `json:"draft_cake_id,omitempty"`

	// CategoryIndex is the position in the ordered category list currently
	// presented to the customer. Only meaningful while State is
	// StateBuildingCake.
	CategoryIndex int `json:"category_index,omitempty"`

	// OrderID is the order under review. Only meaningful while the session
	// is in the review/change states.
	OrderID int64 `json:"order_id,omitempty"`
}

// NewSession creates a clean session at the authorization entry state.
func NewSession() *Session {
	return &Session{State: StateAuthorization}
}
