package status_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/forgeml/matforge-api-types/design"
	kprof "github.com/forgeml/matforge/cmd/forge/config/profiles"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/design/status"
	"github.com/forgeml/matforge/cmd/forge/subcommands/internal/commandline"
	"github.com/forgeml/matforge/cmd/forge/subcommands/logger"
	"github.com/forgeml/matforge/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func TestDesignStatusCommand(t *testing.T) {
	running := design.ProcessStatus{
		RunId: "run-42", Status: design.StatusRunning, Progress: 0.5,
	}
	finished := design.ProcessStatus{
		RunId: "run-42", Status: design.StatusFinished, Progress: 1,
	}
	killed := design.ProcessStatus{
		RunId: "run-42", Status: design.StatusKilled, Progress: 0.7,
	}

	type When struct {
		flag        status.Flag
		defaultView string
		statuses    []design.ProcessStatus
	}
	type Then struct {
		err      error
		wantView string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			profile := &kprof.ForgeProfile{
				ApiRoot: "http://api.matforge.invalid", ApiKey: "test-api-key",
			}
			client := try.To(krst.NewClient(profile)).OrFatal(t)

			nth := 0
			getStatus := func(
				ctx context.Context, _ krst.ForgeClient, viewId string, runId string,
			) (design.ProcessStatus, error) {
				if viewId != then.wantView {
					t.Errorf("wrong view Id: (actual, expected) = (%s, %s)", viewId, then.wantView)
				}
				if runId != "run-42" {
					t.Errorf("wrong run Id: %s", runId)
				}
				s := when.statuses[nth]
				if nth < len(when.statuses)-1 {
					nth += 1
				}
				return s, nil
			}

			testee := status.Task(getStatus)

			forgeEnv := env.New()
			forgeEnv.View = when.defaultView

			actual := testee(
				context.Background(), logger.Null(),
				*forgeEnv,
				client,
				commandline.MockCommandline[status.Flag]{
					Stdout_: new(strings.Builder),
					Stderr_: new(strings.Builder),
					Flags_:  when.flag,
					Args_: map[string][]string{
						status.ARG_RUNID: {"run-42"},
					},
				},
				[]any{},
			)

			if !errors.Is(actual, then.err) {
				t.Errorf("wrong error: (actual, expected) = (%v, %v)", actual, then.err)
			}
		}
	}

	t.Run("without --wait, it shows the status once", theory(
		When{
			flag:     status.Flag{View: "view-1"},
			statuses: []design.ProcessStatus{running},
		},
		Then{err: nil, wantView: "view-1"},
	))

	t.Run("with --wait, it polls until the run is terminal", theory(
		When{
			flag:     status.Flag{View: "view-1", Wait: true, Interval: time.Millisecond},
			statuses: []design.ProcessStatus{running, running, finished},
		},
		Then{err: nil, wantView: "view-1"},
	))

	t.Run("a killed run makes the command fail", theory(
		When{
			flag:     status.Flag{View: "view-1", Wait: true, Interval: time.Millisecond},
			statuses: []design.ProcessStatus{running, killed},
		},
		Then{err: status.ErrRunFailed, wantView: "view-1"},
	))

	t.Run("the data view is taken from forgeenv when --view is not set", theory(
		When{
			flag:        status.Flag{},
			defaultView: "view-from-env",
			statuses:    []design.ProcessStatus{finished},
		},
		Then{err: nil, wantView: "view-from-env"},
	))

	t.Run("without any data view, it is a usage error", theory(
		When{
			flag:     status.Flag{},
			statuses: []design.ProcessStatus{finished},
		},
		Then{err: flarc.ErrUsage},
	))
}
