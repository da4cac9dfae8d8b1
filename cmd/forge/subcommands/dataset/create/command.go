package create

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/forgeml/matforge-api-types/datasets"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Description string `flag:"description" alias:"d" help:"Description of the new dataset."`
}

type Create func(
	ctx context.Context,
	client krst.ForgeClient,
	spec datasets.Spec,
) (datasets.Summary, error)

type Option struct {
	create Create
}

func WithRunner(create Create) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.create = create
		return opt
	}
}

const ARG_NAME = "NAME"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		create: RunCreate,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Register a new (empty) dataset on the platform.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_NAME, Required: true,
				Help: "name of the new dataset",
			},
		},
		common.NewTask(Task(option.create)),
		flarc.WithDescription(`
Register a new (empty) dataset on the platform.

Upload files into it with "dataset push", then build data views on it.
`),
	)
}

func Task(create Create) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		name := cl.Args()[ARG_NAME][0]

		summary, err := create(ctx, client, datasets.Spec{
			Name:        name,
			Description: cl.Flags().Description,
		})
		if err != nil {
			return fmt.Errorf("%w: dataset %s", err, name)
		}

		logger.Printf("dataset %s is registered as %s", name, summary.DatasetId)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(summary); err != nil {
			logger.Panicf("fail to dump registered dataset")
		}
		return nil
	}
}

func RunCreate(
	ctx context.Context, client krst.ForgeClient, spec datasets.Spec,
) (datasets.Summary, error) {
	return client.CreateDataset(ctx, spec)
}
