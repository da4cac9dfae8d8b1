package files

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

type ListFiles func(
	ctx context.Context,
	client krst.ForgeClient,
	datasetId string,
) ([]datasets.FileEntry, error)

type Option struct {
	listFiles ListFiles
}

func WithRunner(listFiles ListFiles) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.listFiles = listFiles
		return opt
	}
}

const ARG_DATASETID = "DATASET_ID"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		listFiles: RunListFiles,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"List files uploaded to a dataset.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_DATASETID, Required: true,
				Help: "Id of the dataset whose files are listed",
			},
		},
		common.NewTask(Task(option.listFiles)),
	)
}

func Task(listFiles ListFiles) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		datasetId := cl.Args()[ARG_DATASETID][0]

		files, err := listFiles(ctx, client, datasetId)
		if err != nil {
			return fmt.Errorf("%w: dataset Id:%s", err, datasetId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(files); err != nil {
			logger.Panicf("fail to dump dataset files")
		}
		return nil
	}
}

func RunListFiles(
	ctx context.Context, client krst.ForgeClient, datasetId string,
) ([]datasets.FileEntry, error) {
	return client.ListDatasetFiles(ctx, datasetId)
}
