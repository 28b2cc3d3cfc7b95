package http

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/tidwall/gjson"
)

// APIError is a response with a non-2xx status. The body is either a JSON
// object, kept in Fields, or text, kept in Message.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]any
	// Keys holds the members of Fields in the order the server sent them.
	Keys []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, FormatErrorBody(e))
}

// Transform maps the response status onto a common error code. Object
// bodies are copied into the error context.
func (e *APIError) Transform() *errors.Error {
	err := errors.New(statusCode(e.Status), e.Error()).
		AddContext("status", strconv.Itoa(e.Status))
	for key, value := range e.Fields {
		err.AddContext(key, formatValue(value))
	}
	return err
}

func statusCode(status int) errors.Code {
	switch status {
	case http.StatusBadRequest:
		return errors.CommonInvalidInput
	case http.StatusUnauthorized:
		return errors.CommonUnauthorized
	case http.StatusForbidden:
		return errors.CommonForbidden
	case http.StatusNotFound:
		return errors.CommonNotFound
	case http.StatusConflict:
		return errors.CommonConflict
	case http.StatusUnprocessableEntity:
		return errors.CommonValidation
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return errors.CommonTimeout
	case http.StatusNotImplemented:
		return errors.CommonUnsupported
	}
	return errors.CommonInternal
}

// FormatErrorBody renders the body of e for display. An object body becomes
// one "key: value" line per member, in the order the server sent them.
func FormatErrorBody(e *APIError) string {
	if e.Fields == nil {
		return e.Message
	}

	keys := fieldOrder(e)
	lines := make([]string, len(keys))
	for i, key := range keys {
		lines[i] = key + ": " + formatValue(e.Fields[key])
	}
	return strings.Join(lines, "\n")
}

// fieldOrder returns the keys of e.Fields in wire order. Members missing
// from Keys, as in an APIError built by hand, follow sorted by name.
func fieldOrder(e *APIError) []string {
	keys := make([]string, 0, len(e.Fields))
	seen := make(map[string]bool, len(e.Fields))
	for _, key := range e.Keys {
		if _, ok := e.Fields[key]; ok && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	var rest []string
	for key := range e.Fields {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func formatValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the status of the APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// readAPIError builds the error for a non-2xx response. A JSON body is
// parsed when the server says it is JSON, anything else is kept as text.
// A body that cannot be read or parsed is replaced by the reason phrase; an
// empty text body stays empty.
func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	reason := http.StatusText(resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr.Message = reason
		return apiErr
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		apiErr.Message = string(data)
		return apiErr
	}

	if !gjson.ValidBytes(data) {
		apiErr.Message = reason
		return apiErr
	}

	body := gjson.ParseBytes(data)
	switch {
	case body.IsObject():
		fields, _ := body.Value().(map[string]any)
		apiErr.Fields = fields
		body.ForEach(func(key, _ gjson.Result) bool {
			apiErr.Keys = append(apiErr.Keys, key.String())
			return true
		})
	case body.Type == gjson.String:
		apiErr.Message = body.Str
	default:
		apiErr.Message = string(data)
	}

	return apiErr
}
