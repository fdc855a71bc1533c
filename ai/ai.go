// Package ai wraps the two generative helpers used by the admin editor:
// tag suggestion for a post body and image generation from a prompt.
//
// The model itself is reached through a Generator. GeminiGenerator talks to
// the Gemini API; tests substitute a fake.
package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"
)

// Generator is the external model boundary.
type Generator interface {
	// GenerateJSON sends prompt and returns the raw JSON text of the reply,
	// constrained to schema when schema is non-nil.
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error)
	// GenerateMedia sends prompt and returns the first inline media part of
	// the reply.
	GenerateMedia(ctx context.Context, prompt string) (Media, error)
}

// Media is binary output returned by a model.
type Media struct {
	MIMEType string
	Data     []byte
}

// DataURI encodes m as a base64 data URI.
func (m Media) DataURI() string {
	return "data:" + m.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}

// Failure reasons carried by GenerationError.
const (
	ReasonEmptyInput = "empty_input"
	ReasonModel      = "model_error"
	ReasonMalformed  = "malformed_output"
	ReasonNoTags     = "no_tags"
	ReasonNoMedia    = "no_media"
	ReasonImage      = "image_processing"
)

// GenerationError is returned by both helpers whenever no usable result was
// produced.
type GenerationError struct {
	Op     string // suggest_tags or generate_image
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func genErr(op, reason string, err error) *GenerationError {
	return &GenerationError{Op: op, Reason: reason, Err: err}
}
