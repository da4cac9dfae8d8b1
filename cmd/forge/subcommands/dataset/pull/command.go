package pull

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"

	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Output string `flag:"output" alias:"o" metavar:"FILE" help:"Where the file is written. \"-\" means stdout. Default: the file's base name in the current directory."`
}

type Pull func(
	ctx context.Context,
	client krst.ForgeClient,
	datasetId string,
	filePath string,
	w io.Writer,
) error

type Option struct {
	pull Pull
}

func WithRunner(pull Pull) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.pull = pull
		return opt
	}
}

const (
	ARG_DATASETID = "DATASET_ID"
	ARG_PATH      = "PATH"
)

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		pull: RunPull,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Download a file of a dataset.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_DATASETID, Required: true,
				Help: "Id of the dataset holding the file",
			},
			{
				Name: ARG_PATH, Required: true,
				Help: "path of the file within the dataset",
			},
		},
		common.NewTask(Task(option.pull)),
		flarc.WithDescription(`
Download a file of a dataset, as it is stored on the platform.
`),
	)
}

func Task(pull Pull) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		datasetId := cl.Args()[ARG_DATASETID][0]
		filePath := cl.Args()[ARG_PATH][0]

		var w io.Writer
		report := func() {}
		switch output := cl.Flags().Output; output {
		case "-":
			w = cl.Stdout()
		default:
			if output == "" {
				output = path.Base(filePath)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f

			report = func() { logger.Printf("downloaded: %s", output) }
		}

		if err := pull(ctx, client, datasetId, filePath, w); err != nil {
			return fmt.Errorf("%w: %s of dataset Id:%s", err, filePath, datasetId)
		}
		report()
		return nil
	}
}

func RunPull(
	ctx context.Context, client krst.ForgeClient, datasetId string, filePath string, w io.Writer,
) error {
	return client.GetFileRaw(ctx, datasetId, filePath, func(r io.Reader) error {
		_, err := io.Copy(w, r)
		return err
	})
}
