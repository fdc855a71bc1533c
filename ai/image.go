package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
)

const (
	opGenerateImage = "generate_image"
	jpegQuality     = 80
)

type GenerateImageInput struct {
	Prompt string `json:"prompt"`
}

type GenerateImageOutput struct {
	ImageURL string `json:"imageUrl"`
}

// Imager generates an image from a text prompt.
type Imager struct {
	gen      Generator
	log      zerolog.Logger
	maxWidth int
}

// ImagerOption configures an Imager.
type ImagerOption func(*Imager)

// WithMaxWidth downscales generated images wider than px and re-encodes them
// as JPEG. Zero keeps images as returned.
func WithMaxWidth(px int) ImagerOption {
	return func(i *Imager) {
		if px > 0 {
			i.maxWidth = px
		}
	}
}

// NewImager returns an Imager backed by gen.
func NewImager(gen Generator, log zerolog.Logger, opts ...ImagerOption) *Imager {
	i := &Imager{gen: gen, log: log}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// GenerateImage returns the generated image as a data URI. Every failure is
// a *GenerationError.
func (i *Imager) GenerateImage(ctx context.Context, in GenerateImageInput) (GenerateImageOutput, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return GenerateImageOutput{}, genErr(opGenerateImage, ReasonEmptyInput, nil)
	}

	i.log.Info().Str("prompt", truncate(prompt, 80)).Msg("generating image")
	media, err := i.gen.GenerateMedia(ctx, prompt)
	if err != nil {
		i.log.Error().Err(err).Msg("image generation failed")
		if errors.Is(err, ErrNoMedia) {
			return GenerateImageOutput{}, genErr(opGenerateImage, ReasonNoMedia, err)
		}
		return GenerateImageOutput{}, genErr(opGenerateImage, ReasonModel, err)
	}
	if len(media.Data) == 0 || !strings.HasPrefix(media.MIMEType, "image/") {
		return GenerateImageOutput{}, genErr(opGenerateImage, ReasonNoMedia, nil)
	}

	if i.maxWidth > 0 {
		media, err = shrinkImage(media, i.maxWidth)
		if err != nil {
			return GenerateImageOutput{}, genErr(opGenerateImage, ReasonImage, err)
		}
	}
	return GenerateImageOutput{ImageURL: media.DataURI()}, nil
}

// shrinkImage scales m down to maxWidth when it is wider and encodes the
// result as JPEG. Narrower images and formats without a registered decoder
// are returned untouched.
func shrinkImage(m Media, maxWidth int) (Media, error) {
	img, _, err := image.Decode(bytes.NewReader(m.Data))
	if errors.Is(err, image.ErrFormat) {
		return m, nil
	}
	if err != nil {
		return Media{}, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return m, nil
	}

	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Media{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return Media{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
