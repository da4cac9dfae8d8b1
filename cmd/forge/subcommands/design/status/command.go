package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/forgeml/matforge-api-types/design"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/forgeml/matforge/pkg/utils/retry"
	"github.com/youta-t/flarc"
)

// ErrRunFailed is returned when the design run reached a terminal state
// without results.
var ErrRunFailed = errors.New("design run failed")

type Flag struct {
	View     string        `flag:"view" alias:"v" help:"Id of the data view the run belongs to. Default: view in forgeenv."`
	Wait     bool          `flag:"wait" alias:"w" help:"Wait until the run reaches a terminal state."`
	Interval time.Duration `flag:"interval" help:"Polling interval used with --wait."`
}

type GetStatus func(
	ctx context.Context,
	client krst.ForgeClient,
	viewId string,
	runId string,
) (design.ProcessStatus, error)

type Option struct {
	getStatus GetStatus
}

func WithRunner(getStatus GetStatus) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.getStatus = getStatus
		return opt
	}
}

const ARG_RUNID = "RUN_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		getStatus: RunGetStatus,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Show the status of a design run.",
		Flag{
			Wait:     false,
			Interval: 3 * time.Second,
		},
		flarc.Args{
			{
				Name: ARG_RUNID, Required: true,
				Help: "Id of the design run to be polled",
			},
		},
		common.NewTask(Task(option.getStatus)),
		flarc.WithDescription(`
Show the status of a design run.

With --wait, "{{ .Command }}" polls the platform until the run reaches a
terminal state ( finished, killed or error ), and then shows the final
status. The command fails when the run ends killed or in error.
`),
	)
}

func Task(getStatus GetStatus) common.Task[Flag] {
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

		var status design.ProcessStatus
		if !flags.Wait {
			s, err := getStatus(ctx, client, viewId, runId)
			if err != nil {
				return fmt.Errorf("%w: run Id:%s", err, runId)
			}
			status = s
		} else {
			interval := flags.Interval
			if interval <= 0 {
				return fmt.Errorf("%w: --interval should be positive", flarc.ErrUsage)
			}

			s, err := retry.Blocking(
				ctx, retry.StaticBackoff(interval),
				func() (design.ProcessStatus, error) {
					s, err := getStatus(ctx, client, viewId, runId)
					if err != nil {
						return s, err
					}
					if !s.Status.Terminal() {
						logger.Printf(
							"run %s: %s (%.0f%%)", runId, s.Status, s.Progress*100,
						)
						return s, retry.ErrRetry
					}
					return s, nil
				},
			)
			if err != nil {
				return err
			}
			status = s
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(status); err != nil {
			logger.Panicf("fail to dump design run status")
		}

		switch status.Status {
		case design.StatusKilled, design.StatusError:
			return fmt.Errorf("%w: run Id:%s is %s", ErrRunFailed, runId, status.Status)
		}
		return nil
	}
}

func RunGetStatus(
	ctx context.Context, client krst.ForgeClient, viewId string, runId string,
) (design.ProcessStatus, error) {
	return client.GetDesignRunStatus(ctx, viewId, runId)
}
