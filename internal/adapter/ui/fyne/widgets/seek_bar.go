package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// SeekBar is a progress bar that reports where it was tapped as a fraction
// of its width.
type SeekBar struct {
	widget.ProgressBar

	OnSeek func(fraction float64)
}

// NewSeekBar creates an empty seek bar without the percentage text.
func NewSeekBar(onSeek func(fraction float64)) *SeekBar {
	b := &SeekBar{OnSeek: onSeek}
	b.TextFormatter = func() string { return "" }
	b.ExtendBaseWidget(b)
	return b
}

// Tapped implements fyne.Tappable.
func (b *SeekBar) Tapped(ev *fyne.PointEvent) {
	if b.OnSeek == nil {
		return
	}
	width := b.Size().Width
	if width <= 0 {
		return
	}
	b.OnSeek(domain.Fraction(float64(ev.Position.X), float64(width)))
}

var _ fyne.Tappable = (*SeekBar)(nil)
