package pull_test

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forgeml/matforge/cmd/forge/env"
	"github.com/forgeml/matforge/cmd/forge/rest/mock"
	"github.com/forgeml/matforge/cmd/forge/subcommands/dataset/pull"
	"github.com/forgeml/matforge/cmd/forge/subcommands/internal/commandline"
	"github.com/forgeml/matforge/cmd/forge/subcommands/logger"
)

func TestPullCommand(t *testing.T) {
	t.Run("--output - streams the file to stdout", func(t *testing.T) {
		content := "formula,hardness\nFe2O3,5.2\n"

		client := mock.New(t)
		client.Impl.GetFileRaw = func(
			ctx context.Context, datasetId string, path string, handler func(io.Reader) error,
		) error {
			if datasetId != "dataset-1" {
				t.Errorf("wrong dataset Id: %s", datasetId)
			}
			if path != "alloys.csv" {
				t.Errorf("wrong path: %s", path)
			}
			return handler(strings.NewReader(content))
		}

		stdout := new(strings.Builder)
		testee := pull.Task(pull.RunPull)

		err := testee(
			context.Background(), logger.Null(),
			*env.New(),
			client,
			commandline.MockCommandline[pull.Flag]{
				Stdout_: stdout,
				Stderr_: new(strings.Builder),
				Flags_:  pull.Flag{Output: "-"},
				Args_: map[string][]string{
					pull.ARG_DATASETID: {"dataset-1"},
					pull.ARG_PATH:      {"alloys.csv"},
				},
			},
			[]any{},
		)
		if err != nil {
			t.Fatal(err)
		}

		if stdout.String() != content {
			t.Errorf("unexpected content: %s", stdout.String())
		}
	})

	t.Run("an error from the platform is passed through", func(t *testing.T) {
		expectedErr := errors.New("fake error")

		client := mock.New(t)
		client.Impl.GetFileRaw = func(
			ctx context.Context, datasetId string, path string, handler func(io.Reader) error,
		) error {
			return expectedErr
		}

		testee := pull.Task(pull.RunPull)

		err := testee(
			context.Background(), logger.Null(),
			*env.New(),
			client,
			commandline.MockCommandline[pull.Flag]{
				Stdout_: new(strings.Builder),
				Stderr_: new(strings.Builder),
				Flags_:  pull.Flag{Output: "-"},
				Args_: map[string][]string{
					pull.ARG_DATASETID: {"dataset-1"},
					pull.ARG_PATH:      {"alloys.csv"},
				},
			},
			[]any{},
		)
		if !errors.Is(err, expectedErr) {
			t.Errorf("wrong error: (actual, expected) = (%v, %v)", err, expectedErr)
		}
	})

	t.Run("it reports the downloaded file only on success", func(t *testing.T) {
		for name, testcase := range map[string]struct {
			pullErr      error
			whenReported bool
		}{
			"when the download succeeds, it logs the file": {
				pullErr: nil, whenReported: true,
			},
			"when the download fails, it stays silent": {
				pullErr: errors.New("fake error"), whenReported: false,
			},
		} {
			t.Run(name, func(t *testing.T) {
				client := mock.New(t)
				client.Impl.GetFileRaw = func(
					ctx context.Context, datasetId string, path string, handler func(io.Reader) error,
				) error {
					if testcase.pullErr != nil {
						return testcase.pullErr
					}
					return handler(strings.NewReader("formula,hardness\nFe2O3,5.2\n"))
				}

				logged := new(strings.Builder)
				output := filepath.Join(t.TempDir(), "alloys.csv")
				testee := pull.Task(pull.RunPull)

				err := testee(
					context.Background(), log.New(logged, "", 0),
					*env.New(),
					client,
					commandline.MockCommandline[pull.Flag]{
						Stdout_: new(strings.Builder),
						Stderr_: new(strings.Builder),
						Flags_:  pull.Flag{Output: output},
						Args_: map[string][]string{
							pull.ARG_DATASETID: {"dataset-1"},
							pull.ARG_PATH:      {"alloys.csv"},
						},
					},
					[]any{},
				)
				if testcase.pullErr == nil && err != nil {
					t.Fatal(err)
				}
				if testcase.pullErr != nil && !errors.Is(err, testcase.pullErr) {
					t.Errorf("wrong error: (actual, expected) = (%v, %v)", err, testcase.pullErr)
				}

				reported := strings.Contains(logged.String(), "downloaded")
				if reported != testcase.whenReported {
					t.Errorf(
						"reported: (actual, expected) = (%v, %v): %s",
						reported, testcase.whenReported, logged.String(),
					)
				}
			})
		}
	})
}
