package env_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forgeml/matforge/cmd/forge/env"
)

func TestLoadForgeEnv(t *testing.T) {
	t.Run("it loads view and effort from a forgeenv file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "forgeenv")
		if err := os.WriteFile(file, []byte("view: view-1\neffort: 7\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		e, err := env.LoadForgeEnv(file)
		if err != nil {
			t.Fatal(err)
		}
		if e.DefaultView() != "view-1" {
			t.Errorf("wrong view: %s", e.DefaultView())
		}
		if e.Effort != 7 {
			t.Errorf("wrong effort: %d", e.Effort)
		}
	})

	t.Run("a missing file yields empty defaults", func(t *testing.T) {
		e, err := env.LoadForgeEnv(filepath.Join(t.TempDir(), "no-such-forgeenv"))
		if err != nil {
			t.Fatal(err)
		}
		if e.DefaultView() != "" || e.Effort != 0 {
			t.Errorf("defaults are not empty: %+v", e)
		}
	})

	t.Run("a broken file is an error", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "forgeenv")
		if err := os.WriteFile(file, []byte(":\tnot yaml"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := env.LoadForgeEnv(file); err == nil {
			t.Errorf("no error occured")
		}
	})
}
