// internal/errors/errors.go
package appErrors

import "fmt"

// ValidationError is returned when an initiate request is malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientBalanceError means the owner cannot cover the reserved cost.
type InsufficientBalanceError struct {
	OwnerID  int
	Balance  string
	Required string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("owner %d balance %s below required %s", e.OwnerID, e.Balance, e.Required)
}

func NewInsufficientBalance(ownerID int, balance, required string) error {
	return &InsufficientBalanceError{OwnerID: ownerID, Balance: balance, Required: required}
}

// NoEligibleRecipientsError means none of the requested recipients resolved to
// an addressable contact.
type NoEligibleRecipientsError struct {
	Requested int
}

func (e *NoEligibleRecipientsError) Error() string {
	return fmt.Sprintf("none of %d requested recipients are addressable", e.Requested)
}

func NewNoEligibleRecipients(requested int) error {
	return &NoEligibleRecipientsError{Requested: requested}
}

// TemplateCreateError means the gateway refused the template submission.
// Not retried: submission is deterministic per content.
type TemplateCreateError struct {
	Cause error
}

func (e *TemplateCreateError) Error() string {
	return fmt.Sprintf("gateway rejected template creation: %v", e.Cause)
}

func (e *TemplateCreateError) Unwrap() error { return e.Cause }

func NewTemplateCreate(cause error) error {
	return &TemplateCreateError{Cause: cause}
}

// GatewayTransientError wraps a retryable gateway/network failure.
type GatewayTransientError struct {
	Op    string
	Cause error
}

func (e *GatewayTransientError) Error() string {
	return fmt.Sprintf("transient gateway error during %s: %v", e.Op, e.Cause)
}

func (e *GatewayTransientError) Unwrap() error { return e.Cause }

func NewGatewayTransient(op string, cause error) error {
	return &GatewayTransientError{Op: op, Cause: cause}
}

// RecipientFormatExhaustedError means every candidate address format failed for
// one recipient. Non-fatal to the campaign.
type RecipientFormatExhaustedError struct {
	ContactID int
	Tried     int
	LastError error
}

func (e *RecipientFormatExhaustedError) Error() string {
	return fmt.Sprintf("contact %d: all %d address formats failed, last error: %v", e.ContactID, e.Tried, e.LastError)
}

func (e *RecipientFormatExhaustedError) Unwrap() error { return e.LastError }

func NewRecipientFormatExhausted(contactID, tried int, last error) error {
	return &RecipientFormatExhaustedError{ContactID: contactID, Tried: tried, LastError: last}
}

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// PersistenceError wraps a storage failure that threatens state-machine
// consistency. Never swallowed; always propagated to the caller.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

func NewPersistence(op string, cause error) error {
	return &PersistenceError{Op: op, Cause: cause}
}
