package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/forgeml/matforge-api-types/views"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/youta-t/flarc"
)

type ShowView func(
	ctx context.Context,
	client krst.ForgeClient,
	viewId string,
) (views.Detail, error)

type Option struct {
	showView ShowView
}

func WithRunner(showView ShowView) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.showView = showView
		return opt
	}
}

const ARG_VIEWID = "VIEW_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		showView: RunShowView,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Return the data view information for the specified view Id.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_VIEWID, Required: true,
				Help: "Id of the data view to be shown",
			},
		},
		common.NewTask(Task(option.showView)),
		flarc.WithDescription(`
Return the data view information for the specified view Id:
its name, the datasets it is built on and its column descriptors.
`),
	)
}

func Task(showView ShowView) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		viewId := cl.Args()[ARG_VIEWID][0]

		detail, err := showView(ctx, client, viewId)
		if err != nil {
			return fmt.Errorf("%w: view Id:%s", err, viewId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump found data view")
		}
		return nil
	}
}

func RunShowView(
	ctx context.Context, client krst.ForgeClient, viewId string,
) (views.Detail, error) {
	return client.GetDataView(ctx, viewId)
}
