package graphics

import "testing"

func TestSizeMax(t *testing.T) {
	tests := []struct {
		a, b, want Size
	}{
		{Size{200, 80}, Size{150, 60}, Size{200, 80}},
		{Size{100, 90}, Size{150, 60}, Size{150, 90}},
		{SizeZero, Size{1, 2}, Size{1, 2}},
	}
	for _, tt := range tests {
		if got := tt.a.Max(tt.b); got != tt.want {
			t.Errorf("%v.Max(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSizeMin(t *testing.T) {
	got := Size{200, 10}.Min(Size{50, 60})
	if got != (Size{50, 10}) {
		t.Errorf("Min = %v, want 50x10", got)
	}
}

func TestSizeIsZero(t *testing.T) {
	if !SizeZero.IsZero() {
		t.Error("SizeZero should be zero")
	}
	if (Size{0.00001, 0}).IsZero() == false {
		t.Error("sizes within tolerance should be zero")
	}
	if (Size{1, 0}).IsZero() {
		t.Error("1x0 should not be zero")
	}
}

func TestSizeString(t *testing.T) {
	if got := (Size{200, 80.5}).String(); got != "200x80.5" {
		t.Errorf("String() = %q", got)
	}
}

func TestColor(t *testing.T) {
	c := RGB(0x12, 0x34, 0x56)
	if c != Color(0xFF123456) {
		t.Errorf("RGB = %#x", uint32(c))
	}
	if got := c.WithAlpha(0.5).Alpha(); got < 0.49 || got > 0.51 {
		t.Errorf("alpha = %v, want ~0.5", got)
	}
	if n := c.NRGBA(); n.R != 0x12 || n.G != 0x34 || n.B != 0x56 || n.A != 0xFF {
		t.Errorf("NRGBA = %+v", n)
	}
	if got := LerpColor(ColorBlack, ColorWhite, 0.5); got != RGB(0x80, 0x80, 0x80) {
		t.Errorf("LerpColor = %#x", uint32(got))
	}
}
