package view

import (
	view_find "github.com/forgeml/matforge/cmd/forge/subcommands/view/find"
	view_retrain "github.com/forgeml/matforge/cmd/forge/subcommands/view/retrain"
	view_show "github.com/forgeml/matforge/cmd/forge/subcommands/view/show"
	view_status "github.com/forgeml/matforge/cmd/forge/subcommands/view/status"
	view_tsne "github.com/forgeml/matforge/cmd/forge/subcommands/view/tsne"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	show, err := view_show.New()
	if err != nil {
		return nil, err
	}
	find, err := view_find.New()
	if err != nil {
		return nil, err
	}
	retrain, err := view_retrain.New()
	if err != nil {
		return nil, err
	}
	status, err := view_status.New()
	if err != nil {
		return nil, err
	}
	tsne, err := view_tsne.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect data views and their trained models.",
		struct{}{},
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("retrain", retrain),
		flarc.WithSubcommand("status", status),
		flarc.WithSubcommand("tsne", tsne),
	)
}
