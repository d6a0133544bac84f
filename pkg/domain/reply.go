package domain

// Reply is one outbound message the engine asks the transport to deliver.
// Rendering of Suggestions (reply keyboard, buttons, plain list) is
// transport-specific; the engine only produces labels.
type Reply struct {
	Text string `json:"text"`

	// Suggestions are suggested replies, in display order.
	Suggestions []string `json:"suggestions,omitempty"`

	// DocumentPath asks the transport to deliver a file (the personal-data
	// policy on the consent prompt).
	DocumentPath string `json:"document_path,omitempty"`
}
