package plot

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

const (
	panelWidth   = 6 * vg.Inch
	bandHeight   = 0.32 * vg.Inch // space taken by one category on y axis
	panelMargin  = 1.2 * vg.Inch  // title, x axis and legend
	minPanelSize = 2.4 * vg.Inch

	// share of one category band covered by its bars or boxes
	groupSpan = 0.8

	// smallest time shown on log axis
	minLogValue = 1e-6
)

type chartKind int

const (
	kindBar chartKind = iota // mean with one standard deviation error bar
	kindBox
)

// panel is a horizontal categorical chart: one band per category along the y
// axis, one bar or box per series inside each band.
type panel struct {
	title      string
	xLabel     string
	kind       chartKind
	logX       bool
	legend     bool
	categories []string
	series     []string
	values     map[[2]string][]float64
}

func finite(values []float64) []float64 {
	result := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			result = append(result, v)
		}
	}
	return result
}

// barStats returns mean and standard deviation, deviation is zero for less
// than two values.
func barStats(values []float64) (mean, std float64, ok bool) {
	values = finite(values)
	if len(values) == 0 {
		return 0, 0, false
	}
	if len(values) == 1 {
		return values[0], 0, true
	}
	mean, std = stat.MeanStdDev(values, nil)
	return mean, std, true
}

func (p *panel) height() vg.Length {
	return max(minPanelSize, vg.Length(len(p.categories))*bandHeight+panelMargin)
}

// position returns y coordinate of series inside category band. The first
// category is drawn on top.
func (p *panel) position(category, series int) float64 {
	slot := groupSpan / float64(len(p.series))
	top := float64(len(p.categories) - 1 - category)
	return top - groupSpan/2 + (float64(series)+0.5)*slot
}

// thickness of one bar or box in canvas unit.
func (p *panel) thickness() vg.Length {
	return bandHeight * groupSpan / vg.Length(len(p.series)) * 0.9
}

// swatch is a filled legend thumbnail.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

// errorPoints places horizontal error bars at bar ends.
type errorPoints struct {
	plotter.XYs
	plotter.XErrors
}

func (p *panel) build() (*gplot.Plot, error) {
	plt := gplot.New()
	plt.Title.Text = p.title
	plt.X.Label.Text = p.xLabel
	plt.Add(plotter.NewGrid())

	// log scale panics on the default range of an empty plot
	if len(p.categories) == 0 || len(p.series) == 0 {
		return plt, nil
	}

	if p.logX {
		plt.X.Scale = gplot.LogScale{}
		plt.X.Tick.Marker = gplot.LogTicks{Prec: -1}
	}

	names := make([]string, len(p.categories))
	for i, category := range p.categories {
		names[len(names)-1-i] = category
	}
	plt.NominalY(names...)

	for si, series := range p.series {
		col := plotutil.Color(si)

		var err error
		switch p.kind {
		case kindBox:
			err = p.addBoxes(plt, si, col)
		default:
			err = p.addBars(plt, si, col)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to draw %s: %s", series, err)
		}

		if p.legend {
			plt.Legend.Add(series, swatch{color: col})
		}
	}

	plt.Legend.Top = true

	return plt, nil
}

func (p *panel) addBars(plt *gplot.Plot, si int, col color.Color) error {
	series := p.series[si]

	means := make(plotter.Values, len(p.categories))
	points := errorPoints{
		XYs:     make(plotter.XYs, 0, len(p.categories)),
		XErrors: make(plotter.XErrors, 0, len(p.categories)),
	}

	for ci, category := range p.categories {
		mean, std, ok := barStats(p.values[[2]string{category, series}])
		if !ok {
			continue
		}

		means[ci] = mean
		if std > 0 {
			points.XYs = append(points.XYs, plotter.XY{X: mean, Y: p.position(ci, si)})
			points.XErrors = append(points.XErrors, struct{ Low, High float64 }{std, std})
		}
	}

	// bars are laid out bottom up, categories top down
	reversed := make(plotter.Values, len(means))
	for i, v := range means {
		reversed[len(means)-1-i] = v
	}

	bars, err := plotter.NewBarChart(reversed, p.thickness())
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.XMin = p.position(len(p.categories)-1, si)
	bars.Color = col
	bars.LineStyle.Width = 0
	plt.Add(bars)

	if len(points.XYs) > 0 {
		errBars, err := plotter.NewXErrorBars(points)
		if err != nil {
			return err
		}
		plt.Add(errBars)
	}

	return nil
}

func (p *panel) addBoxes(plt *gplot.Plot, si int, col color.Color) error {
	series := p.series[si]

	for ci, category := range p.categories {
		values := finite(p.values[[2]string{category, series}])
		if len(values) == 0 {
			continue
		}

		if p.logX {
			for i, v := range values {
				values[i] = max(v, minLogValue)
			}
		}

		box, err := plotter.NewBoxPlot(p.thickness(), p.position(ci, si), plotter.Values(values))
		if err != nil {
			return err
		}
		box.Horizontal = true
		box.FillColor = col
		plt.Add(box)
	}

	return nil
}

// figure lays panels out in a grid, legend is drawn by the first panel.
type figure struct {
	panels []panel
	cols   int
}

// Chart is a figure built from one or more panels, ready to be drawn onto any
// vg canvas.
type Chart struct {
	Name   string
	Plots  [][]*gplot.Plot
	Width  vg.Length
	Height vg.Length
}

func (f *figure) build(name string) (Chart, error) {
	cols := max(1, min(f.cols, len(f.panels)))
	rows := (len(f.panels) + cols - 1) / cols

	chart := Chart{
		Name:  name,
		Plots: make([][]*gplot.Plot, rows),
		Width: vg.Length(cols) * panelWidth,
	}

	for r := range rows {
		chart.Plots[r] = make([]*gplot.Plot, cols)

		rowHeight := minPanelSize
		for c := range cols {
			i := r*cols + c
			if i >= len(f.panels) {
				// tiling needs a full grid
				blank := gplot.New()
				blank.HideAxes()
				chart.Plots[r][c] = blank
				continue
			}

			pn := f.panels[i]
			pn.legend = i == 0

			plt, err := pn.build()
			if err != nil {
				return chart, fmt.Errorf("chart %s: %s", name, err)
			}

			chart.Plots[r][c] = plt
			rowHeight = max(rowHeight, pn.height())
		}

		chart.Height += rowHeight
	}

	return chart, nil
}

// Draw renders chart onto canvas, grids are tiled with aligned axes.
func (c *Chart) Draw(dc draw.Canvas) {
	if len(c.Plots) == 1 && len(c.Plots[0]) == 1 {
		c.Plots[0][0].Draw(dc)
		return
	}

	tiles := draw.Tiles{
		Rows:      len(c.Plots),
		Cols:      len(c.Plots[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := gplot.Align(c.Plots, tiles, dc)
	for r, row := range c.Plots {
		for col, plt := range row {
			plt.Draw(canvases[r][col])
		}
	}
}

// Image rasterizes chart.
func (c *Chart) Image() image.Image {
	img := vgimg.New(c.Width, c.Height)
	c.Draw(draw.New(img))
	return img.Image()
}

// WriteSVG writes chart as SVG document.
func (c *Chart) WriteSVG(w io.Writer) error {
	canvas := vgsvg.New(c.Width, c.Height)
	c.Draw(draw.New(canvas))
	_, err := canvas.WriteTo(w)
	return err
}
