package types

import "fmt"

// ValidationError reports a bad address or amount. It is always raised
// before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NetworkError reports a transport failure talking to an external service.
// Op names the operation so callers can decide on manual retry.
type NetworkError struct {
	Op    string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// InsufficientFundsError reports that the supplied inputs cannot cover
// amount + mining fee + signer fee.
type InsufficientFundsError struct {
	RequiredSats  uint64
	AvailableSats uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d sats, have %d sats", e.RequiredSats, e.AvailableSats)
}

// ProtocolError reports that an external service rejected an otherwise
// well-formed request.
type ProtocolError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s rejected (status %d): %s", e.Op, e.StatusCode, e.Message)
}
