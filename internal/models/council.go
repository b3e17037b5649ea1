package models

// Role identifies the author of a chat message.
type Role string

// Role constants
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message sent to a completion engine.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ModelRef identifies a council member. Name is the human-readable display
// name; ID is the provider-qualified identifier sent to the engine.
type ModelRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// DisplayName returns Name when set, falling back to ID.
func (m ModelRef) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// CandidateResponse is one model's answer to the council query.
type CandidateResponse struct {
	ModelID   string `json:"model_id"`
	ModelName string `json:"model_name,omitempty"`
	Content   string `json:"content"`
}

// LabeledResponse pairs an anonymizing letter label with a candidate response.
// Evaluators only ever see the label, never the model identity.
type LabeledResponse struct {
	Label    string            `json:"label"`
	Response CandidateResponse `json:"response"`
}

// Confidence is an evaluator's self-reported certainty for one placement.
type Confidence string

// Confidence levels
const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)
