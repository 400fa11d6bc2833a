package widgets

import (
	"image"
	"math"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestSongRowTaps(t *testing.T) {
	test.NewTempApp(t)

	var tapped, secondary []int
	row := NewSongRow(
		func(i int) { tapped = append(tapped, i) },
		func(i int, _ fyne.Position) { secondary = append(secondary, i) },
	)
	row.Set(4, "Intro", "3:00", true)

	assert.Equal(t, 4, row.Index())
	assert.Equal(t, "Intro", row.Title())

	test.Tap(row)
	test.TapSecondary(row)
	row.Set(2, "Outro", "", false)
	test.Tap(row)

	assert.Equal(t, []int{4, 2}, tapped)
	assert.Equal(t, []int{4}, secondary)
}

func TestSongRowWithoutCallbacks(t *testing.T) {
	test.NewTempApp(t)

	row := NewSongRow(nil, nil)
	assert.NotPanics(t, func() {
		test.Tap(row)
		test.TapSecondary(row)
	})
}

func TestSeekBarReportsFraction(t *testing.T) {
	test.NewTempApp(t)

	var got []float64
	bar := NewSeekBar(func(f float64) { got = append(got, f) })
	bar.Resize(fyne.NewSize(200, 20))

	test.TapAt(bar, fyne.NewPos(50, 10))
	test.TapAt(bar, fyne.NewPos(250, 10))
	test.TapAt(bar, fyne.NewPos(-5, 10))

	assert.Equal(t, []float64{0.25, 1, 0}, got)
	assert.Empty(t, bar.TextFormatter())
}

func TestProgressRingClampsFraction(t *testing.T) {
	test.NewTempApp(t)

	ring := NewProgressRing(20)
	assert.Equal(t, fyne.NewSize(20, 20), ring.MinSize())

	ring.SetFraction(0.3)
	assert.InDelta(t, 0.3, ring.Fraction(), 1e-9)
	ring.SetFraction(1.8)
	assert.InDelta(t, 1, ring.Fraction(), 1e-9)
	ring.SetFraction(-1)
	assert.Zero(t, ring.Fraction())
}

func TestProgressRingFillsClockwiseFromTop(t *testing.T) {
	test.NewTempApp(t)

	ring := NewProgressRing(40)
	ring.SetFraction(0.5)
	img := ring.draw(40, 40).(*image.RGBA)

	// points on the stroke: right half is played, left half is not
	right := img.RGBAAt(37, 20)
	left := img.RGBAAt(2, 20)
	centre := img.RGBAAt(20, 20)

	assert.NotZero(t, right.A)
	assert.NotZero(t, left.A)
	assert.NotEqual(t, right, left)
	assert.Zero(t, centre.A, "the ring is hollow")

	ring.SetFraction(1)
	full := ring.draw(40, 40).(*image.RGBA)
	assert.Equal(t, full.RGBAAt(37, 20), full.RGBAAt(2, 20))
	assert.Equal(t, right, full.RGBAAt(2, 20))
}

func TestArcFromTop(t *testing.T) {
	assert.InDelta(t, 0, arcFromTop(0, -1), 1e-9)
	assert.InDelta(t, math.Pi/2, arcFromTop(1, 0), 1e-9)
	assert.InDelta(t, math.Pi, arcFromTop(0, 1), 1e-9)
	assert.InDelta(t, 3*math.Pi/2, arcFromTop(-1, 0), 1e-9)
}

func TestSongRowRingFollowsCurrent(t *testing.T) {
	test.NewTempApp(t)

	row := NewSongRow(nil, nil)
	assert.False(t, row.RingVisible())

	row.Set(0, "One", "", true)
	row.SetProgress(0.6)
	assert.True(t, row.RingVisible())
	assert.InDelta(t, 0.6, row.Progress(), 1e-9)

	row.Set(0, "One", "", false)
	assert.False(t, row.RingVisible())
	assert.Zero(t, row.Progress())
}
