// Package plots renders charts of platform results to PNG or SVG.
package plots

import (
	"fmt"
	"io"
	"path"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/forgeml/matforge-api-types/predictions"
	"github.com/forgeml/matforge-api-types/tsne"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// FormatOf picks the chart format from the extension of filename.
// Unknown extensions fall back to "png".
func FormatOf(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".svg":
		return "svg"
	default:
		return "png"
	}
}

// TsneScatter draws the 2-d embedding of one output column as a scatter
// chart and writes it to w in the given format ("png" or "svg").
func TsneScatter(w io.Writer, format string, column string, p tsne.Projection) error {
	if p.Len() == 0 {
		return fmt.Errorf("projection of %s has no points", column)
	}

	xys := make(plotter.XYs, p.Len())
	for i := range xys {
		xys[i].X = p.X[i]
		xys[i].Y = p.Y[i]
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}

	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("t-SNE projection: %s", column)
	plt.X.Label.Text = "t-SNE x"
	plt.Y.Label.Text = "t-SNE y"
	plt.Add(plotter.NewGrid(), scatter)

	return writeChart(w, format, plt)
}

type valueWithLoss struct {
	plotter.XYs
	plotter.YErrors
}

// PredictionErrorBars draws the predicted values of one column per candidate,
// with the model's estimated loss as error bars, and writes it to w in the
// given format ("png" or "svg").
//
// Candidates whose prediction for the column is categorical are skipped.
func PredictionErrorBars(w io.Writer, format string, column string, preds []predictions.Prediction) error {
	points := valueWithLoss{}
	for i, pred := range preds {
		predicted, ok := pred.GetValue(column)
		if !ok {
			continue
		}
		value, ok := predicted.Value.Number()
		if !ok {
			continue
		}

		loss := 0.0
		if predicted.Loss != nil {
			loss = *predicted.Loss
		}
		points.XYs = append(points.XYs, plotter.XY{X: float64(i), Y: value})
		points.YErrors = append(points.YErrors, struct{ Low, High float64 }{loss, loss})
	}
	if len(points.XYs) == 0 {
		return fmt.Errorf("no numeric prediction for column %s", column)
	}

	scatter, err := plotter.NewScatter(points.XYs)
	if err != nil {
		return err
	}
	bars, err := plotter.NewYErrorBars(points)
	if err != nil {
		return err
	}

	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("predicted %s", column)
	plt.X.Label.Text = "candidate"
	plt.Y.Label.Text = column
	plt.Add(plotter.NewGrid(), scatter, bars)

	return writeChart(w, format, plt)
}

func writeChart(w io.Writer, format string, plt *plot.Plot) error {
	wt, err := plt.WriterTo(plotWidth, plotHeight, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
