package remote

import "fmt"

// Kind tags one request's failure into the taxonomy operational tooling keys
// off: slow, down, misbehaving, or garbled are different pages.
type Kind string

const (
	KindTimeout         Kind = "timeout"
	KindUnavailable     Kind = "unavailable"
	KindProtocol        Kind = "protocol"
	KindInvalidResponse Kind = "invalid_response"
	KindUnknown         Kind = "unknown"
)

// CallError is the classified outcome of a failed authoritative call. Status
// is only set for KindProtocol.
type CallError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *CallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("classification service %s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("classification service %s: %s", e.Kind, e.Message)
}

func (e *CallError) Unwrap() error { return e.Err }
