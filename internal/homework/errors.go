package homework

import (
	"errors"
	"fmt"
)

// Kind names an error category. Values double as the category names that
// appear in logs and error reports.
type Kind string

const (
	KindEndpointUnavailable   Kind = "EndpointUnavailable"
	KindRequestFailed         Kind = "RequestFailed"
	KindMalformedResponse     Kind = "MalformedResponse"
	KindMissingHomeworksKey   Kind = "MissingHomeworksKey"
	KindMissingCurrentDateKey Kind = "MissingCurrentDateKey"
	KindMissingStatusField    Kind = "MissingStatusField"
	KindUnknownStatusCode     Kind = "UnknownStatusCode"
	KindDeliveryFailed        Kind = "DeliveryFailed"
	KindPanic                 Kind = "Panic"
	KindUnknown               Kind = "Unknown"
)

// Error is a categorized failure. Detail is the human-readable message;
// StatusCode is set for KindEndpointUnavailable.
type Error struct {
	Kind       Kind
	Detail     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a categorized error. A trailing %w verb is unwrapped into Err.
func Errorf(kind Kind, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: kind, Detail: err.Error(), Err: errors.Unwrap(err)}
}

// KindOf returns the category of err, or KindUnknown for uncategorized errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Report is the (category, message) pair the poll loop compares across
// cycles to suppress repeated notifications. It is comparable with ==.
type Report struct {
	Kind   Kind
	Detail string
}

// ReportOf builds the report for err. A nil error yields the zero Report.
func ReportOf(err error) Report {
	if err == nil {
		return Report{}
	}
	var e *Error
	if errors.As(err, &e) {
		return Report{Kind: e.Kind, Detail: e.Detail}
	}
	return Report{Kind: KindUnknown, Detail: err.Error()}
}

func (r Report) IsZero() bool { return r == Report{} }
