package retrain

import (
	"context"
	"fmt"
	"log"

	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/youta-t/flarc"
)

type Retrain func(
	ctx context.Context,
	client krst.ForgeClient,
	viewId string,
) error

type Option struct {
	retrain Retrain
}

func WithRunner(retrain Retrain) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.retrain = retrain
		return opt
	}
}

const ARG_VIEWID = "VIEW_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		retrain: RunRetrain,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Ask the platform to retrain all models of a data view.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_VIEWID, Required: true,
				Help: "Id of the data view to be retrained",
			},
		},
		common.NewTask(Task(option.retrain)),
		flarc.WithDescription(`
Ask the platform to retrain all models of a data view.

Training happens remotely and this command returns as soon as the request
is accepted. Track progress with "view status" ( "{{ .Command }}" does not wait ).
`),
	)
}

func Task(retrain Retrain) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		viewId := cl.Args()[ARG_VIEWID][0]

		if err := retrain(ctx, client, viewId); err != nil {
			return fmt.Errorf("%w: view Id:%s", err, viewId)
		}

		logger.Printf("retraining of view %s is accepted", viewId)
		return nil
	}
}

func RunRetrain(
	ctx context.Context, client krst.ForgeClient, viewId string,
) error {
	return client.Retrain(ctx, viewId)
}
