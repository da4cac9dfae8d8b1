package stop

import (
	"context"
	"fmt"
	"log"

	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	View string `flag:"view" alias:"v" help:"Id of the data view the run belongs to. Default: view in forgeenv."`
}

type Kill func(
	ctx context.Context,
	client krst.ForgeClient,
	viewId string,
	runId string,
) error

type Option struct {
	kill Kill
}

func WithRunner(kill Kill) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.kill = kill
		return opt
	}
}

const ARG_RUNID = "RUN_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		kill: RunKill,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Abort a running design run.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_RUNID, Required: true,
				Help: "Id of the design run to be aborted",
			},
		},
		common.NewTask(Task(option.kill)),
		flarc.WithDescription(`
Abort a running design run.

A killed run stops as soon as the platform notices, and it will never have
results. Finished runs cannot be killed.
`),
	)
}

func Task(kill Kill) common.Task[Flag] {
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

		if err := kill(ctx, client, viewId, runId); err != nil {
			return fmt.Errorf("%w: run Id:%s", err, runId)
		}

		logger.Printf("design run %s is killed", runId)
		return nil
	}
}

func RunKill(
	ctx context.Context, client krst.ForgeClient, viewId string, runId string,
) error {
	return client.KillDesignRun(ctx, viewId, runId)
}
