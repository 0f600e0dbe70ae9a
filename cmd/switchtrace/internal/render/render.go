// Package render rasterises a tree into PNG frames.
//
// Layout is a single-cell overlay, so every node is drawn as a rectangle
// anchored at the origin. Live nodes are tinted by depth, snapshots are grey,
// and each rectangle is labelled with its tag and classes.
package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/switcher/pkg/graphics"
	"github.com/go-drift/switcher/pkg/tree"
)

const (
	padding     = 8
	titleHeight = 18
	minWidth    = 240
	minHeight   = 80
)

var (
	background = graphics.RGB(0xFA, 0xFA, 0xFA)
	ink        = graphics.RGB(0x21, 0x21, 0x21)
	snapshot   = graphics.RGB(0x9E, 0x9E, 0x9E)
	palette    = []graphics.Color{
		graphics.RGB(0x42, 0x85, 0xF4),
		graphics.RGB(0x34, 0xA8, 0x53),
		graphics.RGB(0xFB, 0xBC, 0x05),
		graphics.RGB(0xEA, 0x43, 0x35),
	}
)

// Options controls frame rendering.
type Options struct {
	// Scale is an integer zoom factor applied to the finished frame.
	// Values below 1 are treated as 1.
	Scale int
	// Title is drawn above the tree.
	Title string
}

// Draw renders the subtree rooted at root using the sizes from its last layout.
func Draw(root *tree.Node, opts Options) *image.NRGBA {
	size := root.Size()
	w := max(int(size.Width+0.5)+2*padding, minWidth)
	h := max(int(size.Height+0.5)+2*padding+titleHeight, minHeight)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), background)

	if opts.Title != "" {
		label(img, opts.Title, padding, padding+11, ink)
	}
	origin := image.Pt(padding, padding+titleHeight)
	drawNode(img, root, origin, 0)

	scale := max(opts.Scale, 1)
	if scale == 1 {
		return img
	}
	scaled := image.NewNRGBA(image.Rect(0, 0, w*scale, h*scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled
}

func drawNode(img *image.NRGBA, n *tree.Node, origin image.Point, depth int) {
	size := n.Size()
	r := image.Rect(0, 0, int(size.Width+0.5), int(size.Height+0.5)).Add(origin)

	c := palette[depth%len(palette)]
	if n.Inert() {
		c = snapshot
	}
	if !r.Empty() {
		fill(img, r, c.WithAlpha(0.18))
		outline(img, r, c)
		label(img, describe(n), r.Min.X+3, r.Min.Y+12, c)
	}
	for _, child := range n.Children() {
		drawNode(img, child, origin, depth+1)
	}
}

func describe(n *tree.Node) string {
	parts := append([]string{n.Tag()}, n.Classes()...)
	return strings.Join(parts, ".")
}

func fill(img *image.NRGBA, r image.Rectangle, c graphics.Color) {
	draw.Draw(img, r, image.NewUniform(c.NRGBA()), image.Point{}, draw.Over)
}

func outline(img *image.NRGBA, r image.Rectangle, c graphics.Color) {
	col := c.NRGBA()
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, col)
		img.SetNRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, col)
		img.SetNRGBA(r.Max.X-1, y, col)
	}
}

// label draws text with its baseline at (x, y), truncated to the image width.
func label(img *image.NRGBA, text string, x, y int, c graphics.Color) {
	face := basicfont.Face7x13
	avail := fixed.I(img.Bounds().Dx() - x - padding)
	for text != "" && font.MeasureString(face, text) > avail {
		text = text[:len(text)-1]
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c.NRGBA()),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// WritePNG encodes img to path, creating parent directories as needed.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
