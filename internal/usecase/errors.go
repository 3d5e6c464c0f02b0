package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindGateway      ErrorKind = "gateway"
	KindConsistency  ErrorKind = "consistency"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal"
)

// Machine readable reasons returned next to the message.
const (
	ReasonEmptyCart            = "EmptyCart"
	ReasonInvalidInput         = "InvalidInput"
	ReasonNotFound             = "NotFound"
	ReasonAlreadyUsed          = "AlreadyUsed"
	ReasonLimitReached         = "LimitReached"
	ReasonDuplicateCode        = "DuplicateCode"
	ReasonStaleOrMissingInit   = "StaleOrMissingInit"
	ReasonPaymentNotSuccessful = "PaymentNotSuccessful"
	ReasonGatewayUnavailable   = "GatewayUnavailable"
	ReasonAlreadyFulfilled     = "AlreadyFulfilled"
	ReasonVerificationFailed   = "VerificationFailed"
	ReasonAmountMismatch       = "AmountMismatch"
	ReasonUnauthorized         = "Unauthorized"
	ReasonDatabase             = "DatabaseError"
)

// AppError is what every usecase returns. Handlers turn Kind into a status code.
type AppError struct {
	Kind    ErrorKind
	Reason  string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.Kind, e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s/%s: %s", e.Kind, e.Reason, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindGateway:
		return http.StatusBadGateway
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of kind k.
func IsKind(err error, k ErrorKind) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Kind == k
}

func newError(kind ErrorKind, reason, message string, cause error) *AppError {
	return &AppError{Kind: kind, Reason: reason, Message: message, Err: cause}
}

func ValidationError(reason, message string) error {
	return newError(KindValidation, reason, message, nil)
}

func ConflictError(reason, message string) error {
	return newError(KindConflict, reason, message, nil)
}

func NotFoundError(reason, message string) error {
	return newError(KindNotFound, reason, message, nil)
}

func GatewayError(reason, message string, cause error) error {
	return newError(KindGateway, reason, message, cause)
}

func ConsistencyError(message string, cause error) error {
	return newError(KindConsistency, ReasonVerificationFailed, message, cause)
}

func UnauthorizedError() error {
	return newError(KindUnauthorized, ReasonUnauthorized, "unauthorized", nil)
}

func dbError(cause error) error {
	return newError(KindInternal, ReasonDatabase, "db error", cause)
}
