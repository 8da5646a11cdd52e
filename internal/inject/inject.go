package inject

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/dallestudio/internal/config"
	"github.com/dmorgan81/dallestudio/internal/image"
	"github.com/dmorgan81/dallestudio/internal/log"
	"github.com/dmorgan81/dallestudio/internal/param"
	"github.com/dmorgan81/dallestudio/internal/prompt"
	"github.com/dmorgan81/dallestudio/internal/store"
	"github.com/dmorgan81/dallestudio/internal/studio"
	"github.com/dmorgan81/dallestudio/internal/worker"
	"github.com/samber/do"
)

// StylesTimeout bounds the preset lookup, which runs before the first frame.
var StylesTimeout = 10 * time.Second

// Setup registers every service. Providers are lazy, so AWS credentials are
// only resolved once an S3 save or a style preset lookup needs them.
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		awsCfg, err := do.Invoke[aws.Config](i)
		if err != nil {
			return nil, err
		}
		return ssm.NewFromConfig(awsCfg), nil
	})
	do.Provide[store.S3API](injector, func(i *do.Injector) (store.S3API, error) {
		awsCfg, err := do.Invoke[aws.Config](i)
		if err != nil {
			return nil, err
		}
		return s3.NewFromConfig(awsCfg), nil
	})
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	do.ProvideNamedValue[string](injector, "openai_base_url", cfg.BaseURL)
	do.ProvideNamed[[]string](injector, "styles", func(i *do.Injector) ([]string, error) {
		if cfg.StylesParam == "" {
			return nil, nil
		}
		fetcher, err := do.Invoke[param.Fetcher](i)
		if err != nil {
			log.Warn("style presets unavailable", "error", err)
			return nil, nil
		}
		fetchCtx, cancel := context.WithTimeout(ctx, StylesTimeout)
		defer cancel()
		styles, err := fetcher.FetchAll(fetchCtx, cfg.StylesParam)
		if err != nil {
			log.Warn("style presets unavailable", "error", err)
			return nil, nil
		}
		return styles, nil
	})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.Provide[*prompt.Styles](injector, prompt.NewStyles)
	do.Provide[image.Generator](injector, image.NewOpenAIGenerator)
	do.Provide[*image.Downloader](injector, image.NewDownloader)
	do.Provide[*worker.Worker](injector, worker.NewWorker)
	do.Provide[store.Uploader](injector, store.NewRouter)

	do.Provide[*studio.Model](injector, func(i *do.Injector) (*studio.Model, error) {
		return studio.NewModel(ctx,
			do.MustInvoke[*worker.Worker](i),
			do.MustInvoke[*prompt.Styles](i),
			do.MustInvoke[store.Uploader](i),
		), nil
	})

	return injector
}
