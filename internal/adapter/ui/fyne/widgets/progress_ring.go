package widgets

import (
	"image"
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

const ringThicknessRatio = 0.18 // Stroke width as a share of the radius

// ProgressRing draws playback progress as a ring filled clockwise from the
// top. The unfilled part is the ring's dash offset.
type ProgressRing struct {
	widget.BaseWidget

	raster   *canvas.Raster
	size     float32
	fraction float64
	mu       sync.RWMutex
}

// NewProgressRing creates an empty ring with the given diameter.
func NewProgressRing(size float32) *ProgressRing {
	r := &ProgressRing{size: size}
	r.raster = canvas.NewRaster(r.draw)
	r.ExtendBaseWidget(r)
	return r
}

// CreateRenderer implements fyne.Widget.
func (r *ProgressRing) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.raster)
}

// MinSize returns the ring's diameter in both directions.
func (r *ProgressRing) MinSize() fyne.Size {
	return fyne.NewSize(r.size, r.size)
}

// SetFraction sets the played share of the song, clamped to [0, 1].
func (r *ProgressRing) SetFraction(fraction float64) {
	f := domain.Fraction(fraction, 1)
	r.mu.Lock()
	changed := f != r.fraction
	r.fraction = f
	r.mu.Unlock()

	if changed {
		r.raster.Refresh()
	}
}

// Fraction returns the displayed fraction.
func (r *ProgressRing) Fraction() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fraction
}

// draw renders the track and the played arc.
func (r *ProgressRing) draw(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return img
	}

	radius := math.Min(float64(w), float64(h)) / 2
	thickness := math.Max(1, radius*ringThicknessRatio)
	// the stroke is centred on mid, so the ring stays inside the raster
	mid := radius - thickness/2
	played := domain.RingCircumference(mid) - domain.RingDashOffset(r.Fraction(), mid)

	track := toRGBA(theme.Color(theme.ColorNameDisabled))
	fill := toRGBA(theme.Color(theme.ColorNamePrimary))
	cx, cy := float64(w)/2, float64(h)/2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			dist := math.Hypot(dx, dy)
			if math.Abs(dist-mid) > thickness/2 {
				continue
			}
			if arcFromTop(dx, dy)*mid < played {
				img.SetRGBA(x, y, fill)
			} else {
				img.SetRGBA(x, y, track)
			}
		}
	}
	return img
}

// arcFromTop returns the clockwise angle in radians from twelve o'clock to
// the point (dx, dy), in [0, 2π).
func arcFromTop(dx, dy float64) float64 {
	a := math.Atan2(dx, -dy)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
