// Package validation implements the InputValidator: a stateless guard
// against blank/oversized/dangerous request payloads. Dangerous-content
// regexes are compiled once at package scope and evaluated against
// free-form text.
package validation

import (
	"regexp"
	"strings"

	"github.com/relaymesh/switchboard/pkg/models"
)

// dangerousContentPattern flags payloads carrying inline script tags,
// javascript: URIs, or inline event handler attributes.
var dangerousContentPattern = regexp.MustCompile(`(?i)<script|javascript:|on\w+\s*=`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Validator validates and sanitizes free-form request payloads. Stateless
// and safe to share across goroutines.
type Validator struct{}

// New builds a stateless Validator.
func New() *Validator {
	return &Validator{}
}

// Validate fails with *models.InvalidInputError if text is blank after
// trimming, exceeds models.MaxPayloadLength runes, or matches a
// dangerous-content pattern.
func (v *Validator) Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &models.InvalidInputError{Reason: "payload is blank after trimming"}
	}
	if len([]rune(trimmed)) > models.MaxPayloadLength {
		return &models.InvalidInputError{Reason: "payload exceeds maximum length"}
	}
	if dangerousContentPattern.MatchString(text) {
		return &models.InvalidInputError{Reason: "payload matches a dangerous content pattern"}
	}
	return nil
}

// Sanitize trims text, collapses runs of whitespace to a single space, and
// strips '<' and '>' characters. Sanitize never fails on non-null input.
func (v *Validator) Sanitize(text string) string {
	trimmed := strings.TrimSpace(text)
	collapsed := whitespaceRun.ReplaceAllString(trimmed, " ")
	replacer := strings.NewReplacer("<", "", ">", "")
	return replacer.Replace(collapsed)
}
