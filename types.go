package mildred

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

// String is an escaped string value. Display yields the HTML escaped form,
// Raw the original text with invalid UTF-8 replaced.
type String struct {
	raw     string
	escaped string
}

func NewString(s string) *String {
	raw := strings.ToValidUTF8(s, string(utf8.RuneError))

	return &String{raw: raw, escaped: html.EscapeString(raw)}
}

func (s *String) Display() string {
	return s.escaped
}

func (s *String) Raw() string {
	return s.raw
}

func (s *String) String() string {
	return s.escaped
}

// HTML is user supplied markup, displayed after sanitizing it with a UGC
// policy.
type HTML struct {
	raw       string
	sanitized string
}

func NewHTML(s string) *HTML {
	return &HTML{raw: s, sanitized: htmlSanitizer().Sanitize(s)}
}

func (h *HTML) Display() string {
	return h.sanitized
}

func (h *HTML) Raw() string {
	return h.raw
}

func htmlSanitizer() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		htmlPolicy = bluemonday.UGCPolicy()
	})

	return htmlPolicy
}
