package errors

import (
	"errors"
	"net/http"
)

// Kind classifies a DomainError for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindNotFound
	KindAuthentication
	KindConflict
)

// StatusCode returns the HTTP status equivalent of k.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindConflict:
		return "ConflictError"
	default:
		return "Error"
	}
}

// DomainError is a deterministic rejection raised by the workflow, the
// authorization gate or the services. Sentinels are compared by identity, so
// wrap them with fmt.Errorf("%w: ...") to attach detail.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(kind Kind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

func Authorization(code, message string) *DomainError {
	return NewDomainError(KindAuthorization, code, message)
}

func NotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

func Authentication(code, message string) *DomainError {
	return NewDomainError(KindAuthentication, code, message)
}

func ConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// AsDomain extracts the first DomainError in err's chain.
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf returns the kind of err, or 0 when err carries no DomainError.
func KindOf(err error) Kind {
	if de, ok := AsDomain(err); ok {
		return de.Kind
	}
	return 0
}
