package worker

import (
	"context"
	"fmt"
	stdimage "image"
	"time"

	"github.com/dmorgan81/dallestudio/internal/image"
	"github.com/dmorgan81/dallestudio/internal/log"
	"github.com/dmorgan81/dallestudio/internal/session"
	"github.com/google/uuid"
	"github.com/samber/do"
)

// Request is built fresh for every generation and never queued.
type Request struct {
	APIKey         string
	FullPrompt     string
	OriginalPrompt string
	Size           image.Size
	Quality        image.Quality
}

// Result is either Succeeded or Failed.
type Result interface {
	result()
}

type Succeeded struct {
	Entry session.Entry
}

type Failed struct {
	Message string
}

func (Succeeded) result() {}
func (Failed) result()    {}

type Downloader interface {
	Download(context.Context, string) ([]byte, error)
}

// Worker runs one generation end to end: API call, image fetch, decode and
// thumbnail. It shares no state with its caller.
type Worker struct {
	generator  image.Generator
	downloader Downloader
	bounds     stdimage.Point
	now        func() time.Time
}

func NewWorker(i *do.Injector) (*Worker, error) {
	return &Worker{
		generator:  do.MustInvoke[image.Generator](i),
		downloader: do.MustInvoke[*image.Downloader](i),
		bounds:     image.ThumbnailBounds,
		now:        time.Now,
	}, nil
}

// Run never panics. It runs outside the event loop, where a panic would
// take the whole program down with the terminal still in raw mode.
func (w *Worker) Run(ctx context.Context, req Request) (res Result) {
	log := log.FromContextOrDiscard(ctx).WithGroup("worker")
	defer func() {
		if r := recover(); r != nil {
			log.Error("generation panicked", "panic", r)
			res = Failed{Message: fmt.Sprintf("generation failed: %v", r)}
		}
	}()

	entry, err := w.run(ctx, req)
	if err != nil {
		log.Error("generation failed", "error", err)
		return Failed{Message: err.Error()}
	}

	log.Info("generation succeeded", "id", entry.ID, "bytes", len(entry.Raw))
	return Succeeded{Entry: entry}
}

func (w *Worker) run(ctx context.Context, req Request) (session.Entry, error) {
	res, err := w.generator.Generate(ctx, image.Params{
		APIKey:  req.APIKey,
		Prompt:  req.FullPrompt,
		Size:    req.Size,
		Quality: req.Quality,
	})
	if err != nil {
		return session.Entry{}, fmt.Errorf("generate image: %w", err)
	}

	raw, err := w.downloader.Download(ctx, res.URL)
	if err != nil {
		return session.Entry{}, fmt.Errorf("fetch image: %w", err)
	}

	img, format, err := image.Decode(raw)
	if err != nil {
		return session.Entry{}, fmt.Errorf("decode image: %w", err)
	}
	thumb, err := image.Thumbnail(img, w.bounds)
	if err != nil {
		return session.Entry{}, fmt.Errorf("decode image: %w", err)
	}
	log.FromContextOrDiscard(ctx).WithGroup("worker").Debug("thumbnailed image",
		"format", format, "from", img.Bounds().Size().String(), "to", thumb.Bounds().Size().String())

	return session.Entry{
		ID:             uuid.NewString(),
		FullPrompt:     req.FullPrompt,
		OriginalPrompt: req.OriginalPrompt,
		RevisedPrompt:  res.RevisedPrompt,
		Size:           string(req.Size),
		Quality:        string(req.Quality),
		Thumbnail:      thumb,
		Raw:            raw,
		CreatedAt:      w.now(),
	}, nil
}
