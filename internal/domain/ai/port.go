package ai

import "context"

// Message is one role-tagged entry in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles accepted by the completion endpoint.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Client is the port to a hosted text-completion service: given a list of
// role/content messages it returns a single text string.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
