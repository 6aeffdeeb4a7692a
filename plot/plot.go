package plot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/evaluation"
	"github.com/SirZenith/kgebench/results"
	"github.com/charmbracelet/log"
	"github.com/signintech/gopdf"
)

const (
	ChartTimes   = "times"
	ChartSummary = "summary"

	// every chart is also bundled into this PDF
	BundleName = "charts"

	summaryCols = 2
)

// BarMetrics get a bar chart of their own.
var BarMetrics = []string{evaluation.MetricAAMRI, evaluation.MetricMRR, evaluation.MetricIAMR}

// summaryExcluded metrics are left out of summary grid.
var summaryExcluded = []string{evaluation.MetricAAMR, evaluation.MetricAAMRI}

type Options struct {
	OutputDir string
	Prefix    string // prepended to chart file names
	Format    string // raster image format written next to SVG
	Test      bool   // keep small datasets
	NoPDF     bool
}

type namedFigure struct {
	name string
	fig  figure
}

// Charts builds all charts of given records.
func Charts(records []results.Record, test bool) ([]Chart, error) {
	records = SkipSmall(records, test)
	rows := Melt(records, evaluation.Metrics)

	models := uniqueInOrder(rows, func(r Row) string { return r.Model })
	datasets := uniqueInOrder(rows, func(r Row) string { return r.Dataset })

	// one row per trial is enough for times, melted rows repeat it per metric
	timeRows := FilterMetrics(rows, evaluation.Metrics[:1], false)
	figures := []namedFigure{{
		name: ChartTimes,
		fig: figure{panels: []panel{{
			xLabel:     "Time (seconds)",
			kind:       kindBox,
			logX:       true,
			categories: datasets,
			series:     models,
			values:     groupValues(timeRows, func(r Row) float64 { return r.Time }),
		}}},
	}}

	for _, metric := range BarMetrics {
		metricRows := FilterMetrics(rows, []string{metric}, false)
		figures = append(figures, namedFigure{
			name: metric,
			fig:  figure{panels: []panel{metricPanel(metricRows, metric, "", datasets, models)}},
		})
	}

	summary := figure{cols: summaryCols}
	for _, metric := range evaluation.Metrics {
		if slices.Contains(summaryExcluded, metric) {
			continue
		}
		metricRows := FilterMetrics(rows, []string{metric}, false)
		summary.panels = append(summary.panels, metricPanel(metricRows, "", "metric = "+metric, datasets, models))
	}
	figures = append(figures, namedFigure{name: ChartSummary, fig: summary})

	charts := make([]Chart, 0, len(figures))
	for _, entry := range figures {
		chart, err := entry.fig.build(entry.name)
		if err != nil {
			return nil, err
		}
		charts = append(charts, chart)
	}

	return charts, nil
}

func metricPanel(rows []Row, xLabel, title string, datasets, models []string) panel {
	return panel{
		title:      title,
		xLabel:     xLabel,
		kind:       kindBar,
		categories: datasets,
		series:     models,
		values:     groupValues(rows, func(r Row) float64 { return r.Value }),
	}
}

// Plot renders charts and writes them into output directory, every chart as
// SVG plus a raster image. Returns paths of all written files.
func Plot(records []results.Record, options Options) ([]string, error) {
	if err := os.MkdirAll(options.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %s", options.OutputDir, err)
	}

	charts, err := Charts(records, options.Test)
	if err != nil {
		return nil, err
	}

	paths := []string{}
	for i := range charts {
		chart := &charts[i]
		stub := filepath.Join(options.OutputDir, options.Prefix+chart.Name)

		svgPath := stub + ".svg"
		if err := common.WriteFileAtomic(svgPath, chart.WriteSVG); err != nil {
			return paths, fmt.Errorf("failed to write %s: %s", svgPath, err)
		}
		paths = append(paths, svgPath)

		imgPath, err := common.SaveImageAs(chart.Image(), stub, options.Format)
		if err != nil {
			return paths, err
		}
		paths = append(paths, imgPath)

		log.Infof("chart saved: %s", stub)
	}

	if !options.NoPDF {
		pdfPath := filepath.Join(options.OutputDir, options.Prefix+BundleName+".pdf")
		if err := SavePDF(charts, pdfPath); err != nil {
			return paths, err
		}

		log.Infof("chart bundle saved: %s", pdfPath)
		paths = append(paths, pdfPath)
	}

	return paths, nil
}

// SavePDF writes charts into one PDF, one page per chart sized to fit it.
func SavePDF(charts []Chart, outputPath string) error {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	trimBox := &gopdf.Box{
		Left:   0,
		Right:  0,
		Top:    0,
		Bottom: 0,
	}

	for i := range charts {
		chart := &charts[i]

		// vg lengths are PDF points
		rect := &gopdf.Rect{
			W: float64(chart.Width),
			H: float64(chart.Height),
		}

		pdf.AddPageWithOption(gopdf.PageOption{
			TrimBox:  trimBox,
			PageSize: rect,
		})

		if err := pdf.ImageFrom(chart.Image(), 0, 0, rect); err != nil {
			return fmt.Errorf("failed to add chart %s to PDF: %s", chart.Name, err)
		}
	}

	return common.WriteFileAtomic(outputPath, func(w io.Writer) error {
		_, err := pdf.WriteTo(w)
		return err
	})
}
