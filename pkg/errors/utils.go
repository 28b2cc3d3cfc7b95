package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// IsChronicleError reports whether err is, or wraps, a coded *Error.
func IsChronicleError(err error) bool {
	var e *Error
	return stderrors.As(err, &e)
}

// GetContext returns the context of the first coded error in the chain.
func GetContext(err error) map[string]string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Context
	}
	return nil
}

// GetCode returns the code of the first coded error in the chain, or "".
func GetCode(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code.String()
	}
	return ""
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code.Equals(code) {
			return true
		}
		if ie, ok := err.(InternalError); ok {
			if t := ie.Transform(); t != nil && t.Code.Equals(code) {
				return true
			}
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// FormatError renders an error for logs. Context keys are sorted.
func FormatError(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return err.Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Code: %s", e.Code))
	parts = append(parts, fmt.Sprintf("Message: %s", e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts = append(parts, "Context:")
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("  %s: %s", k, e.Context[k]))
		}
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %v", e.Cause))
	}

	return strings.Join(parts, "\n")
}

// AsError converts any error to the coded format:
//   - *Error values are returned as-is
//   - the first InternalError in the chain is converted with Transform
//   - otherwise the first *Error in the chain is returned
//   - anything else is wrapped as common.internal
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	if e, ok := err.(*Error); ok {
		return e
	}

	var ie InternalError
	if stderrors.As(err, &ie) {
		return ie.Transform()
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e
	}

	return Wrap(CommonInternal, err, "internal error")
}
