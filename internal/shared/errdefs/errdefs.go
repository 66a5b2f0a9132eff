// Package errdefs defines the error taxonomy shared across the gateway.
//
// Every error the domain layer can return to the HTTP surface is one of
// these types; the surface classifies them with errors.As and maps each
// class to a status code. Transient provider failures are never retried
// here, they surface to the caller as-is.
package errdefs

import "fmt"

// NotFoundError reports an unknown session identifier.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// InvalidActionError reports an action payload rejected before any
// provider call: unknown type, missing or mistyped fields, or an
// operation unsupported by the session's computer type.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action: %s", e.Reason)
}

// ProvisioningError reports a failure to allocate a remote instance.
type ProvisioningError struct {
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("failed to provision instance: %v", e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// ProviderError reports a failure from the automation provider on an
// already-provisioned instance. Message carries the provider's own text.
type ProviderError struct {
	Op      string
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s failed (status %d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("provider %s failed: %s", e.Op, e.Message)
}

// TurnLimitError reports an agent loop that kept requesting actions past
// the configured turn budget.
type TurnLimitError struct {
	Limit int
}

func (e *TurnLimitError) Error() string {
	return fmt.Sprintf("agent exceeded turn limit of %d", e.Limit)
}
