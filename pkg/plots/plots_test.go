package plots_test

import (
	"bytes"
	"testing"

	"github.com/forgeml/matforge-api-types/misc/scalar"
	"github.com/forgeml/matforge-api-types/predictions"
	"github.com/forgeml/matforge-api-types/tsne"
	"github.com/forgeml/matforge/pkg/plots"
	"github.com/forgeml/matforge/pkg/utils/pointer"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestFormatOf(t *testing.T) {
	for _, testcase := range []struct {
		filename string
		expected string
	}{
		{"chart.png", "png"},
		{"chart.svg", "svg"},
		{"chart.SVG", "svg"},
		{"chart.jpg", "png"},
		{"chart", "png"},
	} {
		actual := plots.FormatOf(testcase.filename)
		if actual != testcase.expected {
			t.Errorf(
				"format of %s: (actual, expected) = (%s, %s)",
				testcase.filename, actual, testcase.expected,
			)
		}
	}
}

func TestTsneScatter(t *testing.T) {
	projection := tsne.Projection{
		X:         []float64{0.1, 0.2, 0.3},
		Y:         []float64{1.1, 1.2, 1.3},
		Responses: []float64{5.0, 6.0, 7.0},
		Labels:    []string{"Fe2O3", "TiO2", "SiC"},
		Uids:      []string{"u1", "u2", "u3"},
	}

	t.Run("it renders a projection as PNG", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := plots.TsneScatter(buf, "png", "hardness", projection); err != nil {
			t.Fatal(err)
		}

		if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
			t.Errorf("output is not PNG")
		}
	})

	t.Run("it renders a projection as SVG", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := plots.TsneScatter(buf, "svg", "hardness", projection); err != nil {
			t.Fatal(err)
		}

		if !bytes.Contains(buf.Bytes(), []byte("<svg")) {
			t.Errorf("output is not SVG")
		}
	})

	t.Run("when projection is empty, it returns error", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := plots.TsneScatter(buf, "png", "hardness", tsne.Projection{}); err == nil {
			t.Errorf("no error occured")
		}
		if buf.Len() != 0 {
			t.Errorf("output should be empty on error")
		}
	})
}

func TestPredictionErrorBars(t *testing.T) {
	preds := []predictions.Prediction{
		{
			Values: map[string]predictions.Predicted{
				"hardness": {Value: scalar.Number(5.2), Loss: pointer.Ref(0.3)},
			},
		},
		{
			Values: map[string]predictions.Predicted{
				"hardness": {Value: scalar.Number(6.1), Loss: pointer.Ref(0.2)},
			},
		},
	}

	t.Run("it renders numeric predictions as PNG", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := plots.PredictionErrorBars(buf, "png", "hardness", preds); err != nil {
			t.Fatal(err)
		}

		if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
			t.Errorf("output is not PNG")
		}
	})

	t.Run("it renders numeric predictions as SVG", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := plots.PredictionErrorBars(buf, "svg", "hardness", preds); err != nil {
			t.Fatal(err)
		}

		if !bytes.Contains(buf.Bytes(), []byte("<svg")) {
			t.Errorf("output is not SVG")
		}
	})

	t.Run("when all predictions are categorical, it returns error", func(t *testing.T) {
		categorical := []predictions.Prediction{
			{
				Values: map[string]predictions.Predicted{
					"color": {Value: scalar.Category("gray")},
				},
			},
		}

		buf := new(bytes.Buffer)
		if err := plots.PredictionErrorBars(buf, "png", "color", categorical); err == nil {
			t.Errorf("no error occured")
		}
	})
}
