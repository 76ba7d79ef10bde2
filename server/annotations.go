package server

// ToolAnnotations provides metadata hints about tool behavior.
// These help clients understand what a tool does without calling it.
type ToolAnnotations struct {
	// Title is a human-readable title for the tool.
	Title string `json:"title,omitempty"`

	// ReadOnlyHint indicates the tool only reads data (no side effects).
	ReadOnlyHint *bool `json:"readOnlyHint,omitempty"`

	// DestructiveHint indicates the tool might make destructive changes.
	DestructiveHint *bool `json:"destructiveHint,omitempty"`

	// IdempotentHint indicates repeated calls with the same input have the
	// same effect as a single call.
	IdempotentHint *bool `json:"idempotentHint,omitempty"`

	// OpenWorldHint indicates the tool reaches systems outside the host.
	OpenWorldHint *bool `json:"openWorldHint,omitempty"`
}

// Bool returns a pointer to a bool value for use in annotations.
func Bool(v bool) *bool {
	return &v
}

func (b *ToolBuilder) annotate(fn func(a *ToolAnnotations)) *ToolBuilder {
	if b.err != nil {
		return b
	}
	if b.tool.annotations == nil {
		b.tool.annotations = &ToolAnnotations{}
	}
	fn(b.tool.annotations)
	return b
}

// ReadOnly sets the tool as read-only (no side effects).
func (b *ToolBuilder) ReadOnly() *ToolBuilder {
	return b.annotate(func(a *ToolAnnotations) {
		a.ReadOnlyHint = Bool(true)
		a.DestructiveHint = Bool(false)
	})
}

// Idempotent marks the tool as idempotent.
func (b *ToolBuilder) Idempotent() *ToolBuilder {
	return b.annotate(func(a *ToolAnnotations) {
		a.IdempotentHint = Bool(true)
	})
}

// ClosedWorld marks the tool as not accessing external systems.
func (b *ToolBuilder) ClosedWorld() *ToolBuilder {
	return b.annotate(func(a *ToolAnnotations) {
		a.OpenWorldHint = Bool(false)
	})
}

// Title sets a human-readable title for the tool.
func (b *ToolBuilder) Title(title string) *ToolBuilder {
	return b.annotate(func(a *ToolAnnotations) {
		a.Title = title
	})
}
