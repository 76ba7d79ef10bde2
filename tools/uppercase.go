package tools

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UppercaseInput is the argument bag of the uppercase tool.
type UppercaseInput struct {
	Text string `json:"text" jsonschema:"required,description=The text to convert to uppercase"`
}

// Uppercase applies the full Unicode upper-case mapping without language
// tailoring, so "straße" becomes "STRASSE" and "i" never becomes a dotted
// capital. A Caser is stateful, so one is built per call.
func Uppercase(in UppercaseInput) (string, error) {
	return cases.Upper(language.Und).String(in.Text), nil
}
