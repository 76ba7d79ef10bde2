package server

// ContentTypeText is the only content kind this server produces.
const ContentTypeText = "text"

// Content is a single entry of a tool call result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the envelope returned for every tools/call request.
// It always carries exactly one content entry; IsError is set when the
// dispatcher caught a validation or execution fault.
type CallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// TextResult returns a successful result carrying text.
func TextResult(text string) *CallResult {
	return &CallResult{
		Content: []Content{{Type: ContentTypeText, Text: text}},
	}
}

// ErrorResult returns a failed result describing err.
func ErrorResult(err error) *CallResult {
	return &CallResult{
		Content: []Content{{Type: ContentTypeText, Text: "Error: " + err.Error()}},
		IsError: true,
	}
}

// Text returns the text of the first content entry, or "" if there is none.
func (r *CallResult) Text() string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}

// Failed reports whether the result describes a caught fault.
func (r *CallResult) Failed() bool {
	return r != nil && r.IsError
}
