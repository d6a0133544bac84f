package domain

// Consent is the tri-state personal-data processing consent flag.
type Consent string

const (
	ConsentUnknown  Consent = ""
	ConsentGranted  Consent = "granted"
	ConsentDeclined Consent = "declined"
)

// Customer is one person talking to the bot, keyed by the opaque chat
// identity the transport assigns. Created on first contact, never deleted.
type Customer struct {
	// ID is the transport session/chat identity. Unique and stable.
	ID string `json:"id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`

	// Phone and Address are empty until captured by the dialogue.
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`

	Consent Consent `json:"consent,omitempty"`
}

// DisplayName returns the name used in greetings and order summaries.
func (c *Customer) DisplayName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
