package image

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmorgan81/dallestudio/internal/log"
	"github.com/samber/do"
)

type Downloader struct {
	Client *http.Client
}

func NewDownloader(i *do.Injector) (*Downloader, error) {
	return &Downloader{Client: do.MustInvoke[*http.Client](i)}, nil
}

// Download fetches url and returns the body untouched.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("download")
	log.Info("fetching generated image")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	log.Info("fetched generated image", "bytes", len(data))
	return data, nil
}
