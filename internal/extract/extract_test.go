package extract

import (
	"image"
	"image/color"
	"testing"

	"github.com/gridworks/mapgen/internal/imaging"
)

// stripesImage returns an image of equal-width vertical stripes, one
// per color.
func stripesImage(w, h int, cols []color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	stripe := w / len(cols)
	for x := 0; x < w; x++ {
		c := cols[min(x/stripe, len(cols)-1)]
		for y := 0; y < h; y++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func luminance(c imaging.RGBColor) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

func TestSuggest_RecoversDistinctRegions(t *testing.T) {
	img := stripesImage(120, 60, []color.NRGBA{
		{R: 180, G: 40, B: 40, A: 255},
		{R: 40, G: 160, B: 40, A: 255},
		{R: 40, G: 40, B: 180, A: 255},
	})

	for _, method := range []Method{MethodDominant, MethodKMeans} {
		t.Run(string(method), func(t *testing.T) {
			got, err := Suggest(img, 3, method)
			if err != nil {
				t.Fatalf("Suggest: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("got %d colors, want 3", len(got))
			}

			// Each suggested color should sit near one of the three
			// stripe colors.
			stripes := []imaging.RGBColor{
				{R: 180, G: 40, B: 40},
				{R: 40, G: 160, B: 40},
				{R: 40, G: 40, B: 180},
			}
			for _, c := range got {
				best := imaging.Distance(c, stripes[0])
				for _, s := range stripes[1:] {
					if d := imaging.Distance(c, s); d < best {
						best = d
					}
				}
				if best > 60*60*3 {
					t.Errorf("suggested color %+v is far from every stripe (distance %d)", c, best)
				}
			}
		})
	}
}

func TestSuggest_OrderedDarkToBright(t *testing.T) {
	img := stripesImage(90, 30, []color.NRGBA{
		{R: 230, G: 210, B: 160, A: 255},
		{R: 70, G: 50, B: 40, A: 255},
		{R: 110, G: 140, B: 90, A: 255},
	})

	got, err := Suggest(img, 3, MethodDominant)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if luminance(got[i-1]) > luminance(got[i]) {
			t.Fatalf("palette not sorted dark to bright: %v", got)
		}
	}
}

func TestSuggest_UniformImage(t *testing.T) {
	img := stripesImage(40, 40, []color.NRGBA{{R: 80, G: 160, B: 80, A: 255}})

	// Asking for more colors than the image has must not fail, just
	// return fewer.
	got, err := Suggest(img, 4, MethodKMeans)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("got empty palette from a uniform image")
	}
	for _, c := range got {
		if imaging.Distance(c, imaging.RGBColor{R: 80, G: 160, B: 80}) > 30*30*3 {
			t.Errorf("suggested color %+v is far from the only image color", c)
		}
	}
}

func TestSuggest_Errors(t *testing.T) {
	img := stripesImage(10, 10, []color.NRGBA{{R: 1, G: 2, B: 3, A: 255}})

	if _, err := Suggest(img, 0, MethodDominant); err == nil {
		t.Error("expected error for k = 0")
	}
	if _, err := Suggest(img, -1, MethodDominant); err == nil {
		t.Error("expected error for negative k")
	}
	if _, err := Suggest(img, 2, Method("median-cut")); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestSuggest_TransparentImageKMeans(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	_, err := Suggest(img, 2, MethodKMeans)
	if err == nil {
		t.Fatal("expected error for fully transparent image")
	}
}

func TestSuggest_DefaultMethod(t *testing.T) {
	img := stripesImage(30, 30, []color.NRGBA{{R: 200, G: 50, B: 50, A: 255}})

	got, err := Suggest(img, 1, "")
	if err != nil {
		t.Fatalf("Suggest with empty method: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d colors, want 1", len(got))
	}
}
