package chat

import "time"

// ChatRequest is the body posted to the assistant endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by the assistant endpoint. A non-empty
// Response means success; anything else is an application-level failure.
type ChatResponse struct {
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Usable reports whether the response carries content for the transcript.
func (r ChatResponse) Usable() bool {
	return r.Response != ""
}

// Exchange is one stored user message with the reply it produced.
type Exchange struct {
	UserID    string    `json:"userId"`
	UserType  string    `json:"userType"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}
