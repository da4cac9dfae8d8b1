package show_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/forgeml/matforge-api-types/views"
	"github.com/forgeml/matforge/cmd/forge/env"
	"github.com/forgeml/matforge/cmd/forge/rest/mock"
	"github.com/forgeml/matforge/cmd/forge/subcommands/internal/commandline"
	"github.com/forgeml/matforge/cmd/forge/subcommands/logger"
	"github.com/forgeml/matforge/cmd/forge/subcommands/view/show"
)

func TestShowCommand(t *testing.T) {
	t.Run("it dumps the data view got from the platform", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetDataView = func(ctx context.Context, viewId string) (views.Detail, error) {
			return views.Detail{
				Summary: views.Summary{
					ViewId: viewId, Name: "steel alloys",
					DatasetIds: []string{"dataset-1"},
				},
				Columns: []views.Column{
					{Name: "hardness", Role: views.RoleOutput, Units: "HV"},
				},
			}, nil
		}

		stdout := new(strings.Builder)
		testee := show.Task(show.RunShowView)

		err := testee(
			context.Background(), logger.Null(),
			*env.New(),
			client,
			commandline.MockCommandline[struct{}]{
				Stdout_: stdout,
				Stderr_: new(strings.Builder),
				Args_: map[string][]string{
					show.ARG_VIEWID: {"view-1"},
				},
			},
			[]any{},
		)
		if err != nil {
			t.Fatal(err)
		}

		if calls := client.Calls.GetDataView; len(calls) != 1 || calls[0] != "view-1" {
			t.Errorf("unexpected calls: %+v", calls)
		}
		if out := stdout.String(); !strings.Contains(out, `"view-1"`) ||
			!strings.Contains(out, `"steel alloys"`) {
			t.Errorf("the view is not dumped: %s", out)
		}
	})

	t.Run("an error from the platform is passed through", func(t *testing.T) {
		expectedErr := errors.New("fake error")

		client := mock.New(t)
		client.Impl.GetDataView = func(ctx context.Context, viewId string) (views.Detail, error) {
			return views.Detail{}, expectedErr
		}

		testee := show.Task(show.RunShowView)

		err := testee(
			context.Background(), logger.Null(),
			*env.New(),
			client,
			commandline.MockCommandline[struct{}]{
				Stdout_: new(strings.Builder),
				Stderr_: new(strings.Builder),
				Args_: map[string][]string{
					show.ARG_VIEWID: {"view-1"},
				},
			},
			[]any{},
		)
		if !errors.Is(err, expectedErr) {
			t.Errorf("wrong error: (actual, expected) = (%v, %v)", err, expectedErr)
		}
	})
}
