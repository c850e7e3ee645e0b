package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Errors raised while talking to the generation provider.
var (
	// ErrNotConfigured indicates no API credential was supplied. It is returned
	// at construction time, never per call.
	ErrNotConfigured = errors.New("llm: api key not configured")
	// ErrTimeout indicates the provider did not respond within the call deadline.
	ErrTimeout = errors.New("llm: provider timed out")
	// ErrRateLimited indicates the provider rejected the call with a rate limit.
	ErrRateLimited = errors.New("llm: provider rate limit exceeded")
	// ErrAuth indicates the provider rejected the configured credential.
	ErrAuth = errors.New("llm: provider rejected credentials")
	// ErrTransport indicates a network or non-specific provider failure.
	ErrTransport = errors.New("llm: transport failure")
	// ErrProviderFormat indicates the provider's own response envelope could not
	// be unwrapped.
	ErrProviderFormat = errors.New("llm: unexpected provider response envelope")
)

// Errors raised while parsing the model's text output.
var (
	// ErrNoStructuredData indicates no JSON object could be located in the reply.
	ErrNoStructuredData = errors.New("llm: no structured data in response")
	// ErrMalformedResponse indicates the extracted text is not valid JSON even
	// after repair.
	ErrMalformedResponse = errors.New("llm: malformed response payload")
)

// SchemaError reports every field of a parsed evaluation payload that violated
// its constraint, not just the first.
type SchemaError struct {
	Fields []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("llm: evaluation payload invalid: %s", strings.Join(e.Fields, ", "))
}
