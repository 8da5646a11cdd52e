package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/dmorgan81/dallestudio/internal/log"
	"github.com/samber/do"
)

// DefaultExtension is appended to save destinations that have none.
const DefaultExtension = ".png"

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// NewUploadParams prepares data for writing to name, adding the default
// extension when name has none.
func NewUploadParams(name string, data []byte, metadata map[string]string) UploadParams {
	if path.Ext(name) == "" {
		name += DefaultExtension
	}
	return UploadParams{
		Name:        name,
		Data:        data,
		ContentType: http.DetectContentType(data),
		Metadata:    metadata,
	}
}

type FileUploader struct{}

func (*FileUploader) Upload(ctx context.Context, params UploadParams) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Info("writing", "file", params.Name, "bytes", len(params.Data))
	return os.WriteFile(params.Name, params.Data, 0644)
}

// Router sends s3://bucket/key destinations to S3 and everything else to the
// local filesystem. The S3 client is only built on first use.
type Router struct {
	file *FileUploader
	s3   func() (S3API, error)
}

func NewRouter(i *do.Injector) (Uploader, error) {
	return &Router{
		file: &FileUploader{},
		s3: func() (S3API, error) {
			return do.Invoke[S3API](i)
		},
	}, nil
}

func (r *Router) Upload(ctx context.Context, params UploadParams) error {
	if !strings.HasPrefix(params.Name, "s3://") {
		return r.file.Upload(ctx, params)
	}

	u, err := url.Parse(params.Name)
	if err != nil {
		return err
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return fmt.Errorf("s3 destination needs a bucket and a key: %s", params.Name)
	}

	client, err := r.s3()
	if err != nil {
		return err
	}
	params.Name = key
	return (&S3Uploader{Client: client, Bucket: u.Host}).Upload(ctx, params)
}
