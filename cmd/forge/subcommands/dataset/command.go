package dataset

import (
	dataset_create "github.com/forgeml/matforge/cmd/forge/subcommands/dataset/create"
	dataset_files "github.com/forgeml/matforge/cmd/forge/subcommands/dataset/files"
	dataset_pull "github.com/forgeml/matforge/cmd/forge/subcommands/dataset/pull"
	dataset_push "github.com/forgeml/matforge/cmd/forge/subcommands/dataset/push"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	create, err := dataset_create.New()
	if err != nil {
		return nil, err
	}
	push, err := dataset_push.New()
	if err != nil {
		return nil, err
	}
	files, err := dataset_files.New()
	if err != nil {
		return nil, err
	}
	pull, err := dataset_pull.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage datasets and their files.",
		struct{}{},
		flarc.WithSubcommand("create", create),
		flarc.WithSubcommand("push", push),
		flarc.WithSubcommand("files", files),
		flarc.WithSubcommand("pull", pull),
	)
}
