package design

import (
	design_results "github.com/forgeml/matforge/cmd/forge/subcommands/design/results"
	design_status "github.com/forgeml/matforge/cmd/forge/subcommands/design/status"
	design_stop "github.com/forgeml/matforge/cmd/forge/subcommands/design/stop"
	design_submit "github.com/forgeml/matforge/cmd/forge/subcommands/design/submit"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	submit, err := design_submit.New()
	if err != nil {
		return nil, err
	}
	status, err := design_status.New()
	if err != nil {
		return nil, err
	}
	results, err := design_results.New()
	if err != nil {
		return nil, err
	}
	stop, err := design_stop.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Run materials-design searches over a data view.",
		struct{}{},
		flarc.WithSubcommand("submit", submit),
		flarc.WithSubcommand("status", status),
		flarc.WithSubcommand("results", results),
		flarc.WithSubcommand("stop", stop),
	)
}
