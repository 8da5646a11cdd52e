package image

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmorgan81/dallestudio/internal/log"
	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator builds a client per call because the key is supplied with
// every request rather than at startup.
type OpenAIGenerator struct {
	Client  *http.Client
	BaseURL string
}

func NewOpenAIGenerator(i *do.Injector) (Generator, error) {
	return &OpenAIGenerator{
		Client:  do.MustInvoke[*http.Client](i),
		BaseURL: do.MustInvokeNamed[string](i, "openai_base_url"),
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, params Params) (Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("openai").With("params", params)
	log.Info("generating image via openai")

	cfg := openai.DefaultConfig(params.APIKey)
	if g.BaseURL != "" {
		cfg.BaseURL = g.BaseURL
	}
	if g.Client != nil {
		cfg.HTTPClient = g.Client
	}
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateImage(ctx, openai.ImageRequest{
		Model:          Model,
		Prompt:         params.Prompt,
		Size:           string(params.Size),
		Quality:        string(params.Quality),
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return Result{}, err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return Result{}, fmt.Errorf("%w: no image url in %d results", ErrMalformedResponse, len(resp.Data))
	}

	log.Info("received image url from openai")
	return Result{URL: resp.Data[0].URL, RevisedPrompt: resp.Data[0].RevisedPrompt}, nil
}
