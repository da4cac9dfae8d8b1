package init

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"

	prof "github.com/forgeml/matforge/cmd/forge/config/profiles"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
)

const ARG_FORGE_PROFILE_FILE = "FORGE_PROFILE_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"initialize this directory as a matforge project.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_FORGE_PROFILE_FILE, Required: true,
				Help: "filepath to forgeprofile file, which you received from your admin.",
			},
		},
		common.NewTaskWithCommonFlag(Task),
		flarc.WithDescription(`
Register a new forgeprofile into your profile store.

"forgeprofile" is a file which contains the endpoint of the platform API and
the API key to authenticate against it. "{{ .Command }}" registers the given
forgeprofile into your profile store, and marks this directory as a project
using that profile.

The name of the profile is given by "--profile" ( default: current filepath ).
`),
	)
}

func Task(
	ctx context.Context,
	logger *log.Logger,
	cf common.CommonFlags,
	cl flarc.Commandline[struct{}],
	params []any,
) error {
	profFile := cl.Args()[ARG_FORGE_PROFILE_FILE][0]

	profStore, err := prof.LoadProfileStore(cf.ProfileStore)
	if errors.Is(err, prof.ErrProfileStoreNotFound) {
		// ok.
		profStore = prof.ProfileStore{}
	} else if err != nil {
		return err
	}

	profName := cf.Profile
	newProf := new(prof.ForgeProfile)
	{
		content, err := os.ReadFile(profFile)
		if err != nil {
			return err
		}

		if err := yaml.Unmarshal(content, newProf); err != nil {
			return err
		}
	}
	if err := newProf.Verify(); err != nil {
		return err
	}

	profStore[profName] = newProf
	if err := profStore.Save(cf.ProfileStore); err != nil {
		return err
	}
	logger.Printf(
		"profile %s is saved to %s", profName, cf.ProfileStore,
	)

	{
		f, err := os.OpenFile(".forgeprofile", os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.FileMode(0600))
		if err != nil {
			return err
		}
		defer f.Close()
		f.Write([]byte(profName))
	}

	return nil
}
