package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
)

// ErrNetwork is reported when no response was received at all.
var ErrNetwork = errors.New("Network error. Please check your connection.")

// networkError carries the transport failure behind ErrNetwork. Its
// message is always ErrNetwork's.
type networkError struct {
	cause error
}

func (e *networkError) Error() string   { return ErrNetwork.Error() }
func (e *networkError) Unwrap() []error { return []error{ErrNetwork, e.cause} }

// Error is a non-2xx response from the API.
type Error struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type errorBody struct {
	Message string              `json:"message"`
	Detail  string              `json:"detail"`
	Errors  map[string][]string `json:"errors"`
}

const maxErrorBody = 1 << 20

// decodeError builds an Error from a failed response. Field validation
// errors are flattened into one message; otherwise the server's message is
// used, then fallback.
func decodeError(resp *http.Response, fallback string) *Error {
	e := &Error{Status: resp.StatusCode, Message: fallback}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if len(b) == 0 || json.Unmarshal(b, &body) != nil {
		return e
	}

	e.Fields = body.Errors
	switch {
	case len(body.Errors) > 0:
		if msg := flattenFieldErrors(body.Errors); msg != "" {
			e.Message = msg
		}
	case body.Message != "":
		e.Message = body.Message
	case body.Detail != "":
		e.Message = body.Detail
	}
	return e
}

// flattenFieldErrors joins every field's messages with ", ", walking the
// fields in name order.
func flattenFieldErrors(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var msgs []string
	for _, name := range names {
		for _, m := range fields[name] {
			if m = strings.TrimSpace(m); m != "" {
				msgs = append(msgs, m)
			}
		}
	}
	return strings.Join(msgs, ", ")
}
