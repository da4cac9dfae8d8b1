package find

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/forgeml/matforge-api-types/misc/rfctime"
	"github.com/forgeml/matforge-api-types/views"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/forgeml/matforge/pkg/utils/strings"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name    string `flag:"name" alias:"n" help:"Find data views whose name contains this."`
	Dataset string `flag:"dataset" alias:"d" metavar:"DATASET_ID,..." help:"Find data views built on all of these datasets."`
	Since   string `flag:"since" metavar:"RFC3339_DATETIME" help:"Find data views created at this time or later."`
}

type FindViews func(
	ctx context.Context,
	client krst.ForgeClient,
	query krst.FindViewParameter,
) ([]views.Summary, error)

type Option struct {
	findViews FindViews
}

func WithRunner(findViews FindViews) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.findViews = findViews
		return opt
	}
}

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		findViews: RunFindViews,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Find data views that satisfy all specified conditions.",
		Flag{},
		flarc.Args{},
		common.NewTask(Task(option.findViews)),
		flarc.WithDescription(`
Find data views that satisfy all specified conditions.
If no condition is given, all data views are returned.

'--dataset' can hold multiple dataset Ids separated with ",".
Only data views built on all of them are returned.

'--since' is a RFC3339 date-time, like "2021-01-01T00:00:00Z".
Only data views created at that time or later are returned.

Finding data views with name containing "steel":

	{{ .Command }} --name steel

Finding data views built on datasets "ds-1" and "ds-2":

	{{ .Command }} --dataset ds-1,ds-2

Finding all data views:

	{{ .Command }}
`),
	)
}

func Task(findViews FindViews) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()

		query := krst.FindViewParameter{
			Name:       flags.Name,
			DatasetIds: strings.SplitIfNotEmpty(flags.Dataset, ","),
		}
		if flags.Since != "" {
			since, err := time.Parse(rfctime.RFC3339DateTimeFormatZ, flags.Since)
			if err != nil {
				return fmt.Errorf(
					"%w: --since should be RFC3339 date-time: %s", flarc.ErrUsage, flags.Since,
				)
			}
			query.CreatedSince = &since
		}

		found, err := findViews(ctx, client, query)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found data views")
		}
		return nil
	}
}

func RunFindViews(
	ctx context.Context, client krst.ForgeClient, query krst.FindViewParameter,
) ([]views.Summary, error) {
	return client.FindDataViews(ctx, query)
}
