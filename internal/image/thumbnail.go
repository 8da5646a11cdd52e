package image

import (
	"bytes"
	"errors"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ThumbnailBounds is the box a thumbnail must fit in.
var ThumbnailBounds = stdimage.Pt(650, 500)

var ErrEmptyImage = errors.New("image has no pixels")

// Decode reads any registered image format. data is not retained.
func Decode(data []byte) (stdimage.Image, string, error) {
	return stdimage.Decode(bytes.NewReader(data))
}

// Thumbnail scales src down to fit within bounds, keeping its aspect ratio.
// Images that already fit are returned unchanged.
func Thumbnail(src stdimage.Image, bounds stdimage.Point) (stdimage.Image, error) {
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, src.Bounds().Size())
	}
	size := Fit(src.Bounds().Size(), bounds)
	if size == src.Bounds().Size() {
		return src, nil
	}
	dst := stdimage.NewRGBA(stdimage.Rectangle{Max: size})
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// Fit returns the largest size with the aspect ratio of size that fits in
// bounds, never larger than size itself. Dimensions never drop below one.
// An empty size is returned as is.
func Fit(size, bounds stdimage.Point) stdimage.Point {
	if size.X <= 0 || size.Y <= 0 || (size.X <= bounds.X && size.Y <= bounds.Y) {
		return size
	}
	w, h := bounds.X, size.Y*bounds.X/size.X
	if h > bounds.Y {
		w, h = size.X*bounds.Y/size.Y, bounds.Y
	}
	return stdimage.Pt(max(w, 1), max(h, 1))
}
