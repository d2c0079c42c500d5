// Package errors defines the domain error taxonomy shared across services.
// Handlers map the codes onto HTTP statuses; services compare against the
// exported vars with errors.Is.
package errors

// DomainError is a business-rule failure with a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}
