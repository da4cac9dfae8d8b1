package results

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/forgeml/matforge-api-types/design"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	View string `flag:"view" alias:"v" help:"Id of the data view the run belongs to. Default: view in forgeenv."`
}

type GetResults func(
	ctx context.Context,
	client krst.ForgeClient,
	viewId string,
	runId string,
) (design.Results, error)

type Option struct {
	getResults GetResults
}

func WithRunner(getResults GetResults) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.getResults = getResults
		return opt
	}
}

const ARG_RUNID = "RUN_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		getResults: RunGetResults,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Retrieve the proposed materials of a finished design run.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_RUNID, Required: true,
				Help: "Id of the finished design run",
			},
		},
		common.NewTask(Task(option.getResults)),
		flarc.WithDescription(`
Retrieve the proposed materials of a finished design run.

Results come in two lists: "bestMaterials" maximize expected performance
against the target, and "nextExperiments" maximize the information gained
when measured. Results exist only for runs that finished; killed or failed
runs have none.
`),
	)
}

func Task(getResults GetResults) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		runId := cl.Args()[ARG_RUNID][0]
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

		results, err := getResults(ctx, client, viewId, runId)
		if err != nil {
			return fmt.Errorf("%w: run Id:%s", err, runId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(results); err != nil {
			logger.Panicf("fail to dump design run results")
		}
		return nil
	}
}

func RunGetResults(
	ctx context.Context, client krst.ForgeClient, viewId string, runId string,
) (design.Results, error) {
	return client.GetDesignRunResults(ctx, viewId, runId)
}
