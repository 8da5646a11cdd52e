package image

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// Model is the only image model the studio talks to.
const Model = openai.CreateImageModelDallE3

type Size string

const (
	SizeSquare    Size = openai.CreateImageSize1024x1024
	SizePortrait  Size = openai.CreateImageSize1024x1792
	SizeLandscape Size = openai.CreateImageSize1792x1024
)

var Sizes = []Size{SizeSquare, SizePortrait, SizeLandscape}

func (s Size) Name() string {
	switch s {
	case SizeSquare:
		return "Square"
	case SizePortrait:
		return "Portrait"
	case SizeLandscape:
		return "Landscape"
	}
	return string(s)
}

type Quality string

const (
	QualityStandard Quality = openai.CreateImageQualityStandard
	QualityHD       Quality = openai.CreateImageQualityHD
)

var Qualities = []Quality{QualityStandard, QualityHD}

func (q Quality) Name() string {
	switch q {
	case QualityStandard:
		return "Standard"
	case QualityHD:
		return "HD"
	}
	return string(q)
}

type Params struct {
	APIKey  string  `json:"-"`
	Prompt  string  `json:"prompt"`
	Size    Size    `json:"size"`
	Quality Quality `json:"quality"`
}

// LogValue keeps the API key out of every log handler.
func (p Params) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("prompt", p.Prompt),
		slog.String("size", string(p.Size)),
		slog.String("quality", string(p.Quality)),
	)
}

// Result is the location of a generated image plus the prompt the API
// actually rendered, which may differ from the one sent.
type Result struct {
	URL           string
	RevisedPrompt string
}

type Generator interface {
	Generate(context.Context, Params) (Result, error)
}

// ErrMalformedResponse is returned when the API answers without an image URL.
var ErrMalformedResponse = errors.New("malformed image response")
