package kitsu

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mklemme/kitsu/pkg/jsonapi"
)

// Static errors for err113 compliance.
var (
	ErrModelRequired = errors.New("model identifier is required")
	ErrIDRequired    = jsonapi.ErrIDRequired
	ErrBodyRequired  = jsonapi.ErrObjectBodyRequired
	ErrNoResults     = errors.New("no results")
)

// Kind classifies a failed call.
type Kind string

const (
	// KindResponse means the server answered with a non-2xx status.
	KindResponse Kind = "response"
	// KindTransport means no response was obtained.
	KindTransport Kind = "transport"
	// KindDecode means the response body was not a JSON:API document.
	KindDecode Kind = "decode"
	// KindEncode means the request body could not be encoded.
	KindEncode Kind = "encode"
)

// Error is the single error type returned by Client methods for anything
// that went wrong after the call's input was accepted.
type Error struct {
	Op         string
	Method     string
	URL        string
	Kind       Kind
	StatusCode int
	Errors     []jsonapi.ErrorObject
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("kitsu")

	if e.Op != "" {
		b.WriteString(" " + e.Op)
	}

	if e.Method != "" {
		b.WriteString(" " + e.Method + " " + e.URL)
	}

	b.WriteString(": ")

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "%d %s", e.StatusCode, http.StatusText(e.StatusCode))

		if len(e.Errors) > 0 || e.Err != nil {
			b.WriteString(": ")
		}
	}

	switch {
	case len(e.Errors) > 0:
		b.WriteString(e.Errors[0].Error())
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	case e.StatusCode == 0:
		b.WriteString(string(e.Kind) + " error")
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// FirstError returns the first JSON:API error object or nil.
func (e *Error) FirstError() *jsonapi.ErrorObject {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// Normalize folds the outcome of one call into an *Error. It returns nil
// when err is nil and resp, if any, has a 2xx status.
//
// The kind is derived from what is known: a non-2xx resp is KindResponse, a
// 2xx resp with an error is KindDecode, an error before any request existed
// is KindEncode, anything else is KindTransport. An *Error already present in
// err's chain is returned as is.
func Normalize(op string, req *Request, resp *Response, err error) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	failed := resp != nil && !successful(resp.StatusCode)
	if err == nil && !failed {
		return nil
	}

	normalized := &Error{Op: op, Err: err}

	if req != nil {
		normalized.Method = req.Method
		normalized.URL = req.URL
	}

	switch {
	case failed:
		normalized.Kind = KindResponse
		normalized.StatusCode = resp.StatusCode
		normalized.Body = resp.Body

		if errs, parseErr := jsonapi.ParseErrors(resp.Body); parseErr == nil {
			normalized.Errors = errs
		}
	case resp != nil:
		normalized.Kind = KindDecode
		normalized.StatusCode = resp.StatusCode
		normalized.Body = resp.Body
	case req == nil:
		normalized.Kind = KindEncode
	default:
		normalized.Kind = KindTransport
	}

	return normalized
}

func successful(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// callerInput reports whether err was caused by the arguments of the call.
// Such errors are returned without normalization.
func callerInput(err error) bool {
	return errors.Is(err, ErrModelRequired) ||
		errors.Is(err, ErrIDRequired) ||
		errors.Is(err, ErrBodyRequired)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	kitsuErr := &Error{}
	if errors.As(err, &kitsuErr) {
		return kitsuErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return isResponse(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is a 401 response.
func IsUnauthorized(err error) bool {
	return isResponse(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a 403 response.
func IsForbidden(err error) bool {
	return isResponse(err, http.StatusForbidden)
}

func isResponse(err error, status int) bool {
	kitsuErr := &Error{}
	if errors.As(err, &kitsuErr) {
		return kitsuErr.Kind == KindResponse && kitsuErr.StatusCode == status
	}

	return false
}
