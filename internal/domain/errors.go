package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError covers seat contention and any other lost-race write.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type UnauthenticatedError struct {
	Msg string
	Err error
}

func (e UnauthenticatedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthenticated"
}

func (e UnauthenticatedError) Unwrap() error { return e.Err }

// PaymentDeclinedError is terminal for a checkout session; Reason is shown
// to the user as-is.
type PaymentDeclinedError struct {
	Reason string
}

func (e PaymentDeclinedError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "pago rechazado"
}

// TransientError marks store/network failures where retrying the failed
// step (never the whole purchase) is safe.
type TransientError struct {
	Op  string
	Err error
}

func (e TransientError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("transient failure in %s", e.Op)
	}
	return "transient failure"
}

func (e TransientError) Unwrap() error { return e.Err }

// InconsistencyError reports a charge that completed without its ticket or
// seat bookkeeping. It must never be folded into an ordinary decline.
type InconsistencyError struct {
	TransactionID string
	Msg           string
	Err           error
}

func (e InconsistencyError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("post-payment inconsistency (tx %s): %s", e.TransactionID, e.Msg)
	}
	return fmt.Sprintf("post-payment inconsistency (tx %s)", e.TransactionID)
}

func (e InconsistencyError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnauthenticated(err error) bool {
	var target UnauthenticatedError
	return errors.As(err, &target)
}

func IsPaymentDeclined(err error) bool {
	var target PaymentDeclinedError
	return errors.As(err, &target)
}

func IsTransient(err error) bool {
	var target TransientError
	return errors.As(err, &target)
}

func IsInconsistency(err error) bool {
	var target InconsistencyError
	return errors.As(err, &target)
}
