package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/forgeml/matforge-api-types/views"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/forgeml/matforge/pkg/utils/retry"
	"github.com/youta-t/flarc"
)

// ErrServiceBroken is returned when a service reports an error context and
// will not become ready without operator intervention.
var ErrServiceBroken = errors.New("service is broken")

type Flag struct {
	Wait     bool          `flag:"wait" alias:"w" help:"Wait until all services of the data view are ready."`
	Interval time.Duration `flag:"interval" help:"Polling interval used with --wait."`
}

type GetStatus func(
	ctx context.Context,
	client krst.ForgeClient,
	viewId string,
) (views.ServiceStatus, error)

type Option struct {
	getStatus GetStatus
}

func WithRunner(getStatus GetStatus) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.getStatus = getStatus
		return opt
	}
}

const ARG_VIEWID = "VIEW_ID"

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
		"Show readiness of the services backed by a data view's models.",
		Flag{
			Wait:     false,
			Interval: 3 * time.Second,
		},
		flarc.Args{
			{
				Name: ARG_VIEWID, Required: true,
				Help: "Id of the data view whose services are reported",
			},
		},
		common.NewTask(Task(option.getStatus)),
		flarc.WithDescription(`
Show readiness of the services backed by a data view's models:
predict, design, data reports and model reports.

With --wait, "{{ .Command }}" polls the platform until every service is
ready, and then shows the final status. If any service reports an error,
waiting stops immediately and the command fails.
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
		viewId := cl.Args()[ARG_VIEWID][0]
		flags := cl.Flags()

		var status views.ServiceStatus
		if !flags.Wait {
			s, err := getStatus(ctx, client, viewId)
			if err != nil {
				return fmt.Errorf("%w: view Id:%s", err, viewId)
			}
			status = s
		} else {
			interval := flags.Interval
			if interval <= 0 {
				return fmt.Errorf("%w: --interval should be positive", flarc.ErrUsage)
			}

			s, err := retry.Blocking(
				ctx, retry.StaticBackoff(interval),
				func() (views.ServiceStatus, error) {
					s, err := getStatus(ctx, client, viewId)
					if err != nil {
						return s, err
					}
					if broken, reason := brokenService(s); broken {
						return s, fmt.Errorf("%w: %s", ErrServiceBroken, reason)
					}
					if !allReady(s) {
						logger.Printf("view %s: %s", viewId, progressLine(s))
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
			logger.Panicf("fail to dump service status")
		}

		if broken, reason := brokenService(status); broken {
			return fmt.Errorf("%w: %s", ErrServiceBroken, reason)
		}
		return nil
	}
}

func eachService(s views.ServiceStatus) map[string]views.Service {
	return map[string]views.Service{
		"predict":      s.Predict,
		"design":       s.Design,
		"dataReports":  s.DataReports,
		"modelReports": s.ModelReports,
	}
}

func allReady(s views.ServiceStatus) bool {
	for _, svc := range eachService(s) {
		if !svc.Ready {
			return false
		}
	}
	return true
}

func brokenService(s views.ServiceStatus) (bool, string) {
	for name, svc := range eachService(s) {
		if svc.Broken() {
			return true, fmt.Sprintf("%s: %s", name, svc.Reason)
		}
	}
	return false, ""
}

func progressLine(s views.ServiceStatus) string {
	for name, svc := range eachService(s) {
		if svc.Ready || svc.Event == nil {
			continue
		}
		return fmt.Sprintf(
			"%s: %s (%s; %.0f%%)",
			name, svc.Event.Title, svc.Event.Subtitle, svc.Event.Progress*100,
		)
	}
	return "services are not ready yet"
}

func RunGetStatus(
	ctx context.Context, client krst.ForgeClient, viewId string,
) (views.ServiceStatus, error) {
	return client.ServiceStatus(ctx, viewId)
}
