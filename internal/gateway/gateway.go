// internal/gateway/gateway.go
package gateway

import "context"

// TemplateState is the moderation state reported by the gateway.
type TemplateState string

const (
	StatePending  TemplateState = "PENDING"
	StateApproved TemplateState = "APPROVED"
	StateRejected TemplateState = "REJECTED"
)

// Gateway is the messaging provider used by the dispatch pipeline. It is
// injected so tests can fake it; nothing in the pipeline talks to the real
// provider directly.
type Gateway interface {
	// CreateTemplate submits a named template for moderation and returns the
	// gateway-assigned template id.
	CreateTemplate(ctx context.Context, name, bodyText, mediaRef string) (string, error)
	// GetTemplateStatus returns the current moderation state of a template.
	GetTemplateStatus(ctx context.Context, templateID string) (TemplateState, error)
	// SendTemplateMessage delivers an approved template to one address with
	// the given substitution variables. Returns the gateway message id.
	SendTemplateMessage(ctx context.Context, address, templateName string, vars map[string]string, mediaRef string) (string, error)
}
