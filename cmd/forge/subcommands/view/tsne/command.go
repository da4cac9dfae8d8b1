package tsne

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	apitsne "github.com/forgeml/matforge-api-types/tsne"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/forgeml/matforge/pkg/plots"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Column string `flag:"column" alias:"c" help:"Output column whose projection is taken. Default: all columns."`
	Plot   string `flag:"plot" metavar:"FILE" help:"Render the projection as a scatter chart into this file (.png or .svg). Requires --column."`
}

type GetTsne func(
	ctx context.Context,
	client krst.ForgeClient,
	viewId string,
) (apitsne.Tsne, error)

type Option struct {
	getTsne GetTsne
}

func WithRunner(getTsne GetTsne) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.getTsne = getTsne
		return opt
	}
}

const ARG_VIEWID = "VIEW_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		getTsne: RunGetTsne,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Retrieve the t-SNE projections computed for a data view.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_VIEWID, Required: true,
				Help: "Id of the data view whose projections are taken",
			},
		},
		common.NewTask(Task(option.getTsne)),
		flarc.WithDescription(`
Retrieve the t-SNE projections computed for a data view.

The platform computes a 2-d embedding per output column when models are
trained. Without flags, all projections are dumped as JSON.

With --column, only that column's projection is dumped. With --plot, the
projection is also rendered as a scatter chart, PNG or SVG by the file
extension.
`),
	)
}

func Task(getTsne GetTsne) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		viewId := cl.Args()[ARG_VIEWID][0]
		flags := cl.Flags()

		if flags.Plot != "" && flags.Column == "" {
			return fmt.Errorf("%w: --plot requires --column", flarc.ErrUsage)
		}

		projections, err := getTsne(ctx, client, viewId)
		if err != nil {
			return fmt.Errorf("%w: view Id:%s", err, viewId)
		}

		var payload any = projections
		if flags.Column != "" {
			projection, ok := projections.GetProjection(flags.Column)
			if !ok {
				return fmt.Errorf(
					"no projection for column %s in view %s", flags.Column, viewId,
				)
			}
			payload = projection

			if flags.Plot != "" {
				f, err := os.Create(flags.Plot)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := plots.TsneScatter(f, plots.FormatOf(flags.Plot), flags.Column, projection); err != nil {
					return err
				}
				logger.Printf("scatter chart is written to %s", flags.Plot)
			}
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(payload); err != nil {
			logger.Panicf("fail to dump t-SNE projections")
		}
		return nil
	}
}

func RunGetTsne(
	ctx context.Context, client krst.ForgeClient, viewId string,
) (apitsne.Tsne, error) {
	return client.GetTsne(ctx, viewId)
}
