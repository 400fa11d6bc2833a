// Package widgets provides custom Fyne widgets for the TuneStream application.
package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const songRowRingSize = 18

// SongRow is a song list cell that responds to taps itself instead of going
// through list selection, so tapping the current song again can toggle it.
// A secondary tap (right-click) opens the row's context menu. The current
// row shows a progress ring.
type SongRow struct {
	widget.BaseWidget

	title  *widget.Label
	detail *widget.Label
	ring   *ProgressRing
	index  int

	tapped          func(index int)
	secondaryTapped func(index int, pos fyne.Position)
}

// NewSongRow creates a row with the given tap callbacks. Either may be nil.
func NewSongRow(tapped func(index int), secondaryTapped func(index int, pos fyne.Position)) *SongRow {
	r := &SongRow{
		title:           widget.NewLabel(""),
		detail:          widget.NewLabel(""),
		ring:            NewProgressRing(songRowRingSize),
		tapped:          tapped,
		secondaryTapped: secondaryTapped,
	}
	r.title.Truncation = fyne.TextTruncateEllipsis
	r.detail.Importance = widget.LowImportance
	r.ring.Hide()
	r.ExtendBaseWidget(r)
	return r
}

// CreateRenderer implements fyne.Widget.
func (r *SongRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, container.NewCenter(r.ring), r.detail, r.title))
}

// Set updates the row for the item at index. Current rows are shown in bold.
func (r *SongRow) Set(index int, title, detail string, current bool) {
	r.index = index
	r.title.TextStyle = fyne.TextStyle{Bold: current}
	r.title.SetText(title)
	r.detail.SetText(detail)
	if current {
		r.ring.Show()
	} else {
		r.ring.SetFraction(0)
		r.ring.Hide()
	}
}

// SetProgress fills the row's ring. It only shows on the current row.
func (r *SongRow) SetProgress(fraction float64) {
	r.ring.SetFraction(fraction)
}

// Progress returns the fraction the ring shows.
func (r *SongRow) Progress() float64 {
	return r.ring.Fraction()
}

// RingVisible reports whether the row shows its progress ring.
func (r *SongRow) RingVisible() bool {
	return r.ring.Visible()
}

// Index returns the list index the row currently shows.
func (r *SongRow) Index() int {
	return r.index
}

// Title returns the displayed title.
func (r *SongRow) Title() string {
	return r.title.Text
}

// Tapped implements fyne.Tappable.
func (r *SongRow) Tapped(*fyne.PointEvent) {
	if r.tapped != nil {
		r.tapped(r.index)
	}
}

// TappedSecondary implements fyne.SecondaryTappable.
func (r *SongRow) TappedSecondary(pe *fyne.PointEvent) {
	if r.secondaryTapped != nil {
		r.secondaryTapped(r.index, pe.AbsolutePosition)
	}
}

// Ensure SongRow implements the required interfaces
var _ fyne.Tappable = (*SongRow)(nil)
var _ fyne.SecondaryTappable = (*SongRow)(nil)
