package help

import (
	"image"
	"testing"
)

func TestRender(t *testing.T) {
	img, err := Render(300, 200, "Welcome")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := img.Bounds(), image.Rect(0, 0, 300, 200); got != want {
		t.Fatalf("bounds %v, want %v", got, want)
	}
	if got := img.RGBAAt(299, 199); got != background {
		t.Errorf("corner is %v, want background %v", got, background)
	}

	// the welcome line is drawn in the top rows
	text := 0
	for y := 0; y < 25; y++ {
		for x := 0; x < 150; x++ {
			if img.RGBAAt(x, y) != background {
				text++
			}
		}
	}
	if text == 0 {
		t.Error("no text drawn")
	}
}
