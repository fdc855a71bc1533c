package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const opSuggestTags = "suggest_tags"

const tagPrompt = `You are a blog post tag suggestion expert.

Given the content of a blog post, suggest relevant tags that can be used to categorize the post.
The tags should be concise and relevant to the main topics discussed in the blog post.

Blog Post Content: %s

Suggest at least 5 tags.`

var tagSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"tags": {
			Type:        genai.TypeArray,
			Description: "An array of suggested tags for the blog post.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"tags"},
}

type SuggestTagsInput struct {
	BlogContent string `json:"blogContent"`
}

type SuggestTagsOutput struct {
	Tags []string `json:"tags"`
}

// Tagger suggests tags for a post body.
type Tagger struct {
	gen Generator
	log zerolog.Logger
}

// NewTagger returns a Tagger backed by gen.
func NewTagger(gen Generator, log zerolog.Logger) *Tagger {
	return &Tagger{gen: gen, log: log}
}

// SuggestTags asks the model for tags describing in.BlogContent. Tags are
// trimmed and blanks dropped. Every failure is a *GenerationError.
func (t *Tagger) SuggestTags(ctx context.Context, in SuggestTagsInput) (SuggestTagsOutput, error) {
	content := strings.TrimSpace(in.BlogContent)
	if content == "" {
		return SuggestTagsOutput{}, genErr(opSuggestTags, ReasonEmptyInput, nil)
	}

	raw, err := t.gen.GenerateJSON(ctx, fmt.Sprintf(tagPrompt, content), tagSchema)
	if err != nil {
		t.log.Error().Err(err).Msg("tag suggestion failed")
		return SuggestTagsOutput{}, genErr(opSuggestTags, ReasonModel, err)
	}

	var out SuggestTagsOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		t.log.Warn().Err(err).Int("bytes", len(raw)).Msg("tag suggestion returned malformed JSON")
		return SuggestTagsOutput{}, genErr(opSuggestTags, ReasonMalformed, err)
	}

	tags := make([]string, 0, len(out.Tags))
	for _, tag := range out.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return SuggestTagsOutput{}, genErr(opSuggestTags, ReasonNoTags, nil)
	}
	t.log.Debug().Int("count", len(tags)).Msg("tags suggested")
	return SuggestTagsOutput{Tags: tags}, nil
}
