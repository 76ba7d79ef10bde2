package tools

// EchoInput is the argument bag of the echo tool.
type EchoInput struct {
	Message string `json:"message" jsonschema:"required,description=The message to echo back"`
}

// Echo returns the message unchanged.
func Echo(in EchoInput) (string, error) {
	return in.Message, nil
}
