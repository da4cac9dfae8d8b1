package env

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ForgeEnv is the per-project `forgeenv` file: defaults applied when a
// command does not specify them explicitly.
type ForgeEnv struct {
	// View is the default data view id of this project.
	View string `yaml:"view,omitempty"`

	// Effort is the default design-run effort.
	Effort int `yaml:"effort,omitempty"`
}

func New() *ForgeEnv {
	return new(ForgeEnv)
}

func (fe *ForgeEnv) DefaultView() string {
	return fe.View
}

// LoadForgeEnv reads a forgeenv file. A missing file is not an error: it
// yields empty defaults.
func LoadForgeEnv(filepath string) (*ForgeEnv, error) {

	env := ForgeEnv{}

	content, err := os.ReadFile(filepath)
	if err != nil {
		return &env, nil
	}

	err = yaml.Unmarshal(content, &env)
	if err != nil {
		return nil, err
	}

	return &env, nil
}
