package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRequired          = errors.New("required field missing")
	ErrConfigInvalid     = errors.New("config validation failed")
	ErrConfigReadFailed  = errors.New("config read failed")
	ErrConfigParseFailed = errors.New("config parse failed")
	ErrWebhookURLMissing = errors.New("webhook URL not configured")
	ErrInvalidURL        = errors.New("invalid URL")
	ErrInvalidDuration   = errors.New("invalid duration")

	ErrFetchFailed     = errors.New("record fetch failed")
	ErrInvalidResponse = errors.New("invalid response from provider")
	ErrDuplicateRecord = errors.New("duplicate record key")

	ErrStateReadFailed    = errors.New("state read failed")
	ErrStateWriteFailed   = errors.New("state write failed")
	ErrStateSerializeFail = errors.New("state serialization failed")
	ErrCorruptState       = errors.New("state file is corrupt")

	ErrNotificationDelivery = errors.New("notification delivery failed")
)

func RequiredField(field string) error {
	return fmt.Errorf("%w: %s", ErrRequired, field)
}

func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func WrapEntity(entity, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s[%s]: %w", entity, name, err)
}

// OpError ties a failed operation to both its sentinel kind and the
// underlying cause, so errors.Is matches either.
type OpError struct {
	Op    string
	Kind  error
	Cause error
}

func (e *OpError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Cause)
}

func (e *OpError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func NewOpError(op string, kind, cause error) error {
	return &OpError{Op: op, Kind: kind, Cause: cause}
}
