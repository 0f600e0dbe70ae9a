package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-drift/switcher/pkg/graphics"
	"github.com/go-drift/switcher/pkg/tree"
)

func layoutTree(t *testing.T) (*tree.Document, *tree.Node) {
	t.Helper()
	doc := tree.NewDocument()
	panel := doc.NewNode("panel")
	box := doc.NewNode("box")
	box.AddClass("a")
	box.SetIntrinsicSize(graphics.Size{Width: 100, Height: 50})
	panel.AppendChild(box)
	panel.AppendChild(box.Clone())
	doc.Root().AppendChild(panel)
	doc.Layout()
	return doc, panel
}

func TestDraw(t *testing.T) {
	_, panel := layoutTree(t)
	img := Draw(panel, Options{Title: "frame 1"})

	b := img.Bounds()
	if b.Dx() != minWidth || b.Dy() != 50+2*padding+titleHeight {
		t.Errorf("bounds = %v", b)
	}
	inside := img.NRGBAAt(padding+50, padding+titleHeight+40)
	if inside == background.NRGBA() {
		t.Error("box interior should be tinted")
	}
	outside := img.NRGBAAt(b.Max.X-2, b.Max.Y-2)
	if outside != background.NRGBA() {
		t.Errorf("outside pixel = %+v, want background", outside)
	}
}

func TestDraw_Scale(t *testing.T) {
	_, panel := layoutTree(t)
	one := Draw(panel, Options{}).Bounds()
	three := Draw(panel, Options{Scale: 3}).Bounds()
	if three.Dx() != 3*one.Dx() || three.Dy() != 3*one.Dy() {
		t.Errorf("scaled bounds = %v, want 3x %v", three, one)
	}
}

func TestWritePNG(t *testing.T) {
	_, panel := layoutTree(t)
	path := filepath.Join(t.TempDir(), "frames", "0001.png")
	if err := WritePNG(path, Draw(panel, Options{})); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != minWidth {
		t.Errorf("decoded width = %d", img.Bounds().Dx())
	}
}
