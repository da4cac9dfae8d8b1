package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/youta-t/flarc"

	pb "github.com/cheggaaa/pb/v3"
)

type Flag struct {
	Dataset string `flag:"dataset" alias:"d" help:"Id of the dataset receiving the files."`
}

type Option struct {
	progressOut io.Writer
}

func WithProgressOut(w io.Writer) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.progressOut = w
		return opt
	}
}

const ARG_SOURCE = "SOURCE"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		progressOut: os.Stderr,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Upload local files into a dataset.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_SOURCE, Required: true, Repeatable: true,
				Help: "local file to be uploaded",
			},
		},
		common.NewTask(Task(option.progressOut)),
		flarc.WithDescription(`
Upload local files into a dataset.

Each file is streamed to the platform and registered under its base name.
CSV files become rows of the dataset; other formats are stored as is.

To upload measurement files into dataset "ds-1":

	{{ .Command }} --dataset ds-1 ./alloys.csv ./notes.json
`),
	)
}

func Task(progressOut io.Writer) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		datasetId := cl.Flags().Dataset
		if datasetId == "" {
			return fmt.Errorf("%w: --dataset is required", flarc.ErrUsage)
		}

		sources := cl.Args()[ARG_SOURCE]
		total := len(sources)
		for n, s := range sources {
			if _, err := os.Stat(s); err != nil {
				logger.Printf("%s: %s -- skipped", err, s)
				continue
			}

			prog := client.UploadFile(ctx, datasetId, s)

			bar := pb.New64(prog.EstimatedTotalSize())
			bar.Set(pb.Bytes, true)
			bar.SetWriter(progressOut)
			if err := bar.Err(); err != nil {
				return err
			}

			bar.Start()
			logger.Printf("[[%d/%d]] sending... %s\n", n+1, total, s)
			for {
				select {
				case <-time.NewTimer(1 * time.Second).C:
					bar.SetTotal(prog.EstimatedTotalSize())
					bar.SetCurrent(prog.ProgressedSize())
					bar.Set("prefix", ellipsis(prog.ProgressingFile(), 60)+":")
					continue
				case <-prog.Sent():
					bar.SetTotal(prog.EstimatedTotalSize())
					bar.SetCurrent(prog.ProgressedSize())
					bar.Set("prefix", "")
				case <-prog.Done():
					// the upload can fail before the file is read out
				}
				break
			}
			bar.Finish()
			select {
			case <-time.NewTimer(1 * time.Second).C:
				logger.Println("waiting server...")
			case <-prog.Done():
			}
			<-prog.Done()
			if err := prog.Error(); err != nil {
				return err
			}

			entry, ok := prog.Result()
			if !ok {
				return fmt.Errorf("failed to register %s", s)
			}

			logger.Printf("registered: %s -> %s (%d bytes)", s, entry.Path, entry.Size)

			enc := json.NewEncoder(cl.Stdout())
			enc.SetIndent("", "    ")
			if err := enc.Encode(entry); err != nil {
				logger.Panicf("fail to dump registered file")
			}
		}

		return nil
	}
}

func ellipsis(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return "[...]" + s[len(s)-length:]
}
