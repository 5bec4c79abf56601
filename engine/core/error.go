package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes used across the data layer.
const (
	CodeConfiguration         = "CONFIGURATION"
	CodeDialectNotSupported   = "DIALECT_NOT_SUPPORTED"
	CodeAmbiguousBinding      = "AMBIGUOUS_BINDING"
	CodeContextNotFound       = "CONTEXT_NOT_FOUND"
	CodeInvalidPaging         = "INVALID_PAGING"
	CodeQueryTranslation      = "QUERY_TRANSLATION"
	CodeDataStoreUnavailable  = "DATA_STORE_UNAVAILABLE"
	CodeInvalidState          = "INVALID_STATE"
	CodeNotFound              = "NOT_FOUND"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	defaultErrorMessageSuffix = "error"
)

// Sentinels for errors.Is. Any *Error carrying the same code matches.
var (
	ErrConfiguration        = &Error{Code: CodeConfiguration, Message: "configuration error"}
	ErrDialectNotSupported  = &Error{Code: CodeDialectNotSupported, Message: "dialect not supported"}
	ErrAmbiguousBinding     = &Error{Code: CodeAmbiguousBinding, Message: "ambiguous repository binding"}
	ErrContextNotFound      = &Error{Code: CodeContextNotFound, Message: "data context not found"}
	ErrInvalidPaging        = &Error{Code: CodeInvalidPaging, Message: "invalid paging"}
	ErrQueryTranslation     = &Error{Code: CodeQueryTranslation, Message: "query translation failed"}
	ErrDataStoreUnavailable = &Error{Code: CodeDataStoreUnavailable, Message: "data store unavailable"}
	ErrInvalidState         = &Error{Code: CodeInvalidState, Message: "invalid state"}
	ErrNotFound             = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists        = &Error{Code: CodeAlreadyExists, Message: "already exists"}
)

// Error is a coded error. Details carry structured context for logs.
type Error struct {
	Code    string
	Message string
	Details map[string]any
	cause   error
}

// NewError wraps err with a code. A nil err produces a coded error whose
// message is derived from the code.
func NewError(err error, code string, details map[string]any) *Error {
	e := &Error{Code: code, Details: details, cause: err}
	if err != nil {
		e.Message = err.Error()
	} else {
		e.Message = strings.ToLower(strings.ReplaceAll(code, "_", " ")) + " " + defaultErrorMessageSuffix
	}
	return e
}

// Errorf builds a coded error from a format string. A %w verb keeps the
// wrapped error reachable through errors.Unwrap.
func Errorf(code string, format string, args ...any) *Error {
	return NewError(fmt.Errorf(format, args...), code, nil)
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, e.Details[k])
	}
	b.WriteString(")")
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports code equality so sentinels match any error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of e with key set in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
