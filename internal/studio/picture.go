package studio

import (
	"fmt"
	stdimage "image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmorgan81/dallestudio/internal/image"
	"golang.org/x/image/draw"
)

// pictureCache remembers the last rendering so redraws for spinner ticks and
// key presses do not rescale the thumbnail.
type pictureCache struct {
	id         string
	cols, rows int
	out        string
}

func (c *pictureCache) render(id string, img stdimage.Image, cols, rows int) string {
	if c.id == id && c.cols == cols && c.rows == rows {
		return c.out
	}
	c.id, c.cols, c.rows = id, cols, rows
	c.out = renderHalfBlocks(img, cols, rows)
	return c.out
}

// renderHalfBlocks draws img into a cols×rows cell grid. Every cell is an
// upper half block carrying two vertically stacked pixels.
func renderHalfBlocks(img stdimage.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 || img.Bounds().Empty() {
		return ""
	}
	size := image.Fit(img.Bounds().Size(), stdimage.Pt(cols, rows*2))
	dst := stdimage.NewRGBA(stdimage.Rectangle{Max: size})
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var b strings.Builder
	for y := 0; y < size.Y; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < size.X; x++ {
			cell := lipgloss.NewStyle().Foreground(hex(dst, x, y))
			if y+1 < size.Y {
				cell = cell.Background(hex(dst, x, y+1))
			}
			b.WriteString(cell.Render("▀"))
		}
	}
	return b.String()
}

func hex(img *stdimage.RGBA, x, y int) lipgloss.Color {
	c := img.RGBAAt(x, y)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
