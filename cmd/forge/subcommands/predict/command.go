package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/forgeml/matforge-api-types/predictions"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/forgeml/matforge/pkg/plots"
	"github.com/youta-t/flarc"
)

type Flag struct {
	View     string `flag:"view" alias:"v" help:"Id of the data view whose models evaluate the candidates. Default: view in forgeenv."`
	Method   string `flag:"method" metavar:"scalar|fromDistribution" help:"How candidates are evaluated."`
	UsePrior bool   `flag:"use-prior" help:"Blend physical prior models into the prediction."`
	Plot     string `flag:"plot" metavar:"FILE" help:"Render predicted values with error bars into this file (.png or .svg). Requires --column."`
	Column   string `flag:"column" alias:"c" help:"Output column to be rendered with --plot."`
}

type Predict func(
	ctx context.Context,
	client krst.ForgeClient,
	viewId string,
	req predictions.Request,
) (predictions.Result, error)

type Option struct {
	predict Predict
}

func WithRunner(predict Predict) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.predict = predict
		return opt
	}
}

const ARG_CANDIDATES_FILE = "CANDIDATES_FILE"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		predict: RunPredict,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Evaluate candidate materials against a data view's trained models.",
		Flag{
			Method: string(predictions.MethodScalar),
		},
		flarc.Args{
			{
				Name: ARG_CANDIDATES_FILE, Required: true,
				Help: `JSON file holding candidates to be evaluated ( "-" for stdin ). A candidate maps descriptor names to values.`,
			},
		},
		common.NewTask(Task(option.predict)),
		flarc.WithDescription(`
Evaluate candidate materials against a data view's trained models.

The candidates file is a JSON array. Each element maps descriptor names to
values ( numbers or category labels ), like:

	[
	    {"formula": "Fe2O3", "temperature": 450},
	    {"formula": "TiO2",  "temperature": 500}
	]

The models predict every input and output column of the view for each
candidate, with an estimated loss for numeric columns.

The data view is taken from --view, or from the "view" entry of the
forgeenv file of this project.
`),
	)
}

func Task(predict Predict) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()

		viewId := flags.View
		if viewId == "" {
			viewId = forgeEnv.DefaultView()
		}
		if viewId == "" {
			return fmt.Errorf(
				"%w: no data view: set --view or the view entry of forgeenv", flarc.ErrUsage,
			)
		}

		method, err := predictions.AsMethod(flags.Method)
		if err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		if flags.Plot != "" && flags.Column == "" {
			return fmt.Errorf("%w: --plot requires --column", flarc.ErrUsage)
		}

		candidates, err := readCandidates(cl)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return fmt.Errorf("%w: no candidates to evaluate", flarc.ErrUsage)
		}

		result, err := predict(ctx, client, viewId, predictions.Request{
			Candidates: candidates,
			Method:     method,
			UsePrior:   flags.UsePrior,
		})
		if err != nil {
			return fmt.Errorf("%w: view Id:%s", err, viewId)
		}

		if flags.Plot != "" {
			f, err := os.Create(flags.Plot)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := plots.PredictionErrorBars(f, plots.FormatOf(flags.Plot), flags.Column, result.Predictions); err != nil {
				return err
			}
			logger.Printf("error-bar chart is written to %s", flags.Plot)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(result); err != nil {
			logger.Panicf("fail to dump predictions")
		}
		return nil
	}
}

func readCandidates(cl flarc.Commandline[Flag]) ([]predictions.Candidate, error) {
	source := cl.Args()[ARG_CANDIDATES_FILE][0]

	var r io.Reader
	if source == "-" {
		r = cl.Stdin()
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var candidates []predictions.Candidate
	if err := json.NewDecoder(r).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("%w: %s is not a JSON array of candidates", err, source)
	}
	return candidates, nil
}

func RunPredict(
	ctx context.Context, client krst.ForgeClient, viewId string, req predictions.Request,
) (predictions.Result, error) {
	return client.Predict(ctx, viewId, req)
}
