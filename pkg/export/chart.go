package export

import (
	"fmt"
	"io"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/voltable/pkg/view"
)

// Chart geometry shared by the SVG and PNG renderers
const (
	ChartWidth  = 640
	chartMargin = 24
	barHeight   = 22
	barGap      = 8
	labelWidth  = 180
	titleHeight = 40
)

const (
	colorBackground = "#ffffff"
	colorBar        = "#6272a4"
	colorText       = "#282a36"
)

type chartBar struct {
	label string
	count int
	x, y  int
	width int
}

type chartLayout struct {
	title  string
	width  int
	height int
	bars   []chartBar
}

// layoutChart places one horizontal bar per bucket, scaled to the largest.
func layoutChart(s view.Summary) chartLayout {
	l := chartLayout{
		title: fmt.Sprintf("%s (%d of %d opportunities)", s.Column, s.Visible, s.Total),
		width: ChartWidth,
	}
	maxCount := 0
	for _, b := range s.Buckets {
		maxCount = max(maxCount, b.Count)
	}
	span := ChartWidth - 2*chartMargin - labelWidth - 40
	y := titleHeight
	for _, b := range s.Buckets {
		w := 0
		if maxCount > 0 {
			w = b.Count * span / maxCount
		}
		l.bars = append(l.bars, chartBar{
			label: b.Label,
			count: b.Count,
			x:     chartMargin + labelWidth,
			y:     y,
			width: w,
		})
		y += barHeight + barGap
	}
	l.height = y + chartMargin
	return l
}

// WriteSVG draws the summary's buckets as a horizontal bar chart
func WriteSVG(w io.Writer, s view.Summary) error {
	l := layoutChart(s)
	canvas := svg.New(w)
	canvas.Start(l.width, l.height)
	canvas.Title(l.title)
	canvas.Rect(0, 0, l.width, l.height, "fill:"+colorBackground)
	canvas.Text(chartMargin, titleHeight-14, l.title,
		"font-family:sans-serif;font-size:16px;font-weight:bold;fill:"+colorText)
	for _, b := range l.bars {
		canvas.Text(chartMargin, b.y+barHeight-6, b.label,
			"font-family:sans-serif;font-size:13px;fill:"+colorText)
		canvas.Rect(b.x, b.y, b.width, barHeight, "fill:"+colorBar)
		canvas.Text(b.x+b.width+6, b.y+barHeight-6, fmt.Sprint(b.count),
			"font-family:sans-serif;font-size:13px;fill:"+colorText)
	}
	canvas.End()
	return nil
}

// WritePNG draws the same chart as WriteSVG into a PNG image
func WritePNG(w io.Writer, s view.Summary) error {
	l := layoutChart(s)
	dc := gg.NewContext(l.width, l.height)
	dc.SetHexColor(colorBackground)
	dc.Clear()

	dc.SetHexColor(colorText)
	dc.DrawString(l.title, chartMargin, titleHeight-14)
	for _, b := range l.bars {
		dc.SetHexColor(colorText)
		dc.DrawStringAnchored(b.label, chartMargin, float64(b.y)+barHeight/2, 0, 0.35)
		dc.DrawStringAnchored(fmt.Sprint(b.count), float64(b.x+b.width+6), float64(b.y)+barHeight/2, 0, 0.35)

		dc.SetHexColor(colorBar)
		dc.DrawRectangle(float64(b.x), float64(b.y), float64(b.width), barHeight)
		dc.Fill()
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
