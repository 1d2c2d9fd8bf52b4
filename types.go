package jwtauth

import (
	"fmt"
	"net/http"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Request is the read-only slice of an inbound request the filter needs.
// Adapters exist for net/http and fiber; gateway hosts with other transports
// implement it directly.
type Request interface {
	Method() string
	// QueryValues returns every value of a query parameter, nil when absent.
	// An empty string value still counts as present.
	QueryValues(name string) []string
	// Cookie returns the named cookie value, empty when absent.
	Cookie(name string) string
	// Header returns the first value of the named request header.
	Header(name string) string
}

// HeaderWriter receives the upstream-visible header mutations the filter
// decides on. http.Header satisfies it.
type HeaderWriter interface {
	Set(name, value string)
	Del(name string)
}

var _ HeaderWriter = http.Header{}

type httpRequest struct {
	r *http.Request
}

// WrapRequest adapts a net/http request for the filter.
func WrapRequest(r *http.Request) Request {
	return httpRequest{r: r}
}

func (h httpRequest) Method() string { return h.r.Method }

func (h httpRequest) QueryValues(name string) []string {
	values, ok := h.r.URL.Query()[name]
	if !ok {
		return nil
	}
	return values
}

func (h httpRequest) Cookie(name string) string {
	cookie, err := h.r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h httpRequest) Header(name string) string {
	return h.r.Header.Get(name)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] JWT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] JWT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] JWT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] JWT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
