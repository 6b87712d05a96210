package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// maxLegendEntries keeps the combined chart readable for large sweeps
const maxLegendEntries = 12

var gridStyle = chart.Style{
	StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
	StrokeWidth: 1.0,
}

var padding = chart.Style{
	Padding: chart.Box{
		Top:    20,
		Left:   20,
		Right:  20,
		Bottom: 20,
	},
}

func (g *Generator) generateLossChart(outputDir string, series []targetSeries) error {
	var allSeries []chart.Series
	for _, s := range series {
		// go-chart cannot scale an axis over a single timestamp
		if len(s.timestamps) < 2 {
			continue
		}
		allSeries = append(allSeries, chart.TimeSeries{
			Name: s.target,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(len(allSeries)),
				StrokeWidth: 2,
			},
			XValues: s.timestamps,
			YValues: s.loss,
		})
	}
	if len(allSeries) == 0 {
		return nil
	}

	graph := chart.Chart{
		Title: "Packet Loss per Target",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: padding,
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name: "Time",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: chart.TimeHourValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Loss %",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 100,
			},
			GridMajorStyle: gridStyle,
		},
		Series: allSeries,
	}

	if len(allSeries) <= maxLegendEntries {
		graph.Elements = []chart.Renderable{
			chart.Legend(&graph),
		}
	}

	return renderPNG(filepath.Join(outputDir, "loss.png"), graph)
}

func (g *Generator) generateLatencyCharts(outputDir string, series []targetSeries) error {
	for _, s := range series {
		var (
			timestamps []time.Time
			values     []float64
			maxValue   float64
		)
		for i, answered := range s.answered {
			if !answered {
				continue
			}
			timestamps = append(timestamps, s.timestamps[i])
			values = append(values, s.avgMs[i])
			if s.avgMs[i] > maxValue {
				maxValue = s.avgMs[i]
			}
		}
		if len(values) < 2 || maxValue == 0 {
			continue
		}

		graph := chart.Chart{
			Title: fmt.Sprintf("Average RTT - %s", s.target),
			TitleStyle: chart.Style{
				FontSize: 16,
			},
			Background: padding,
			Width:      1200,
			Height:     400,
			XAxis: chart.XAxis{
				Name: "Time",
				NameStyle: chart.Style{
					FontSize: 12,
				},
				Style: chart.Style{
					StrokeColor: drawing.ColorBlack,
					FontSize:    10,
				},
				ValueFormatter: chart.TimeMinuteValueFormatter,
			},
			YAxis: chart.YAxis{
				Name: "RTT (ms)",
				NameStyle: chart.Style{
					FontSize: 12,
				},
				Style: chart.Style{
					StrokeColor: drawing.ColorBlack,
					FontSize:    10,
				},
				Range: &chart.ContinuousRange{
					Min: 0,
					Max: maxValue * 1.1,
				},
				GridMajorStyle: gridStyle,
			},
			Series: []chart.Series{
				chart.TimeSeries{
					Name: s.target,
					Style: chart.Style{
						StrokeColor: chart.GetDefaultColor(0),
						StrokeWidth: 2,
					},
					XValues: timestamps,
					YValues: values,
				},
			},
		}

		// Add moving average
		if len(values) > 10 {
			ts := graph.Series[0].(chart.TimeSeries)
			graph.Series = append(graph.Series, chart.SMASeries{
				Name: "Moving Avg",
				Style: chart.Style{
					StrokeColor:     chart.GetDefaultColor(1),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
				InnerSeries: ts,
				Period:      10,
			})
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("latency_%s.png", sanitizeFilename(s.target)))
		if err := renderPNG(filename, graph); err != nil {
			return fmt.Errorf("%s: %w", s.target, err)
		}
	}

	return nil
}

func renderPNG(filename string, graph chart.Chart) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := graph.Render(chart.PNG, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
