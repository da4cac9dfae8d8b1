package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	subdataset "github.com/forgeml/matforge/cmd/forge/subcommands/dataset"
	subdesign "github.com/forgeml/matforge/cmd/forge/subcommands/design"
	subinit "github.com/forgeml/matforge/cmd/forge/subcommands/init"
	"github.com/forgeml/matforge/cmd/forge/subcommands/logger"
	subpredict "github.com/forgeml/matforge/cmd/forge/subcommands/predict"
	subver "github.com/forgeml/matforge/cmd/forge/subcommands/version"
	subview "github.com/forgeml/matforge/cmd/forge/subcommands/view"
	"github.com/forgeml/matforge/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	view := try.To(subview.New()).OrFatal(logger)
	predict := try.To(subpredict.New()).OrFatal(logger)
	design := try.To(subdesign.New()).OrFatal(logger)
	dataset := try.To(subdataset.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	forge := try.To(
		flarc.NewCommandGroup(
			"Matforge commandline interface",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("view", view),
			flarc.WithSubcommand("predict", predict),
			flarc.WithSubcommand("design", design),
			flarc.WithSubcommand("dataset", dataset),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, forge, flarc.WithHelp(true)))
}
