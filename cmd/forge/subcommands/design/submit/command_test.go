package submit_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/forgeml/matforge-api-types/design"
	kprof "github.com/forgeml/matforge/cmd/forge/config/profiles"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/design/submit"
	"github.com/forgeml/matforge/cmd/forge/subcommands/internal/commandline"
	"github.com/forgeml/matforge/cmd/forge/subcommands/logger"
	"github.com/forgeml/matforge/pkg/utils/try"
	"github.com/youta-t/flarc"
)

const specYaml = `
numCandidates: 10
effort: 5
target:
    name: hardness
    objective: max
sampler: default
constraints:
    - name: temperature
      type: realRange
      min: 300
      max: 600
`

func TestSubmitCommand(t *testing.T) {
	type When struct {
		flag        submit.Flag
		defaultView string
		envEffort   int
		spec        string
	}
	type Then struct {
		err        error
		wantView   string
		wantEffort int
		submitted  bool
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			profile := &kprof.ForgeProfile{
				ApiRoot: "http://api.matforge.invalid", ApiKey: "test-api-key",
			}
			client := try.To(krst.NewClient(profile)).OrFatal(t)

			submitted := false
			doSubmit := func(
				ctx context.Context, _ krst.ForgeClient, viewId string, spec design.Spec,
			) (design.Run, error) {
				submitted = true
				if viewId != then.wantView {
					t.Errorf("wrong view Id: (actual, expected) = (%s, %s)", viewId, then.wantView)
				}
				if spec.Effort != then.wantEffort {
					t.Errorf(
						"wrong effort: (actual, expected) = (%d, %d)",
						spec.Effort, then.wantEffort,
					)
				}
				if spec.Target.Name != "hardness" {
					t.Errorf("wrong target: %s", spec.Target.Name)
				}
				return design.Run{RunId: "run-42"}, nil
			}

			testee := submit.Task(doSubmit)

			forgeEnv := env.New()
			forgeEnv.View = when.defaultView
			forgeEnv.Effort = when.envEffort

			stdout := new(strings.Builder)

			actual := testee(
				context.Background(), logger.Null(),
				*forgeEnv,
				client,
				commandline.MockCommandline[submit.Flag]{
					Stdin_:  strings.NewReader(when.spec),
					Stdout_: stdout,
					Stderr_: new(strings.Builder),
					Flags_:  when.flag,
					Args_: map[string][]string{
						submit.ARG_SPEC_FILE: {"-"},
					},
				},
				[]any{},
			)

			if !errors.Is(actual, then.err) {
				t.Errorf("wrong error: (actual, expected) = (%v, %v)", actual, then.err)
			}
			if submitted != then.submitted {
				t.Errorf(
					"submitted: (actual, expected) = (%v, %v)", submitted, then.submitted,
				)
			}
			if then.submitted && !strings.Contains(stdout.String(), "run-42") {
				t.Errorf("run Id is not dumped: %s", stdout.String())
			}
		}
	}

	t.Run("it submits the spec read from stdin", theory(
		When{
			flag: submit.Flag{View: "view-1"},
			spec: specYaml,
		},
		Then{err: nil, wantView: "view-1", wantEffort: 5, submitted: true},
	))

	t.Run("--effort overrides the spec file", theory(
		When{
			flag: submit.Flag{View: "view-1", Effort: 20},
			spec: specYaml,
		},
		Then{err: nil, wantView: "view-1", wantEffort: 20, submitted: true},
	))

	t.Run("forgeenv effort fills a spec without one", theory(
		When{
			flag:      submit.Flag{View: "view-1"},
			envEffort: 7,
			spec: `
numCandidates: 10
target:
    name: hardness
    objective: max
`,
		},
		Then{err: nil, wantView: "view-1", wantEffort: 7, submitted: true},
	))

	t.Run("the data view is taken from forgeenv when --view is not set", theory(
		When{
			flag:        submit.Flag{},
			defaultView: "view-from-env",
			spec:        specYaml,
		},
		Then{err: nil, wantView: "view-from-env", wantEffort: 5, submitted: true},
	))

	t.Run("without any data view, it is a usage error", theory(
		When{
			flag: submit.Flag{},
			spec: specYaml,
		},
		Then{err: flarc.ErrUsage, submitted: false},
	))

	t.Run("an invalid spec is a usage error", theory(
		When{
			flag: submit.Flag{View: "view-1"},
			spec: `
numCandidates: 0
effort: 5
target:
    name: hardness
    objective: max
`,
		},
		Then{err: flarc.ErrUsage, submitted: false},
	))
}
