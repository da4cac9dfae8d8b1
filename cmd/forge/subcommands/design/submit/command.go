package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/forgeml/matforge-api-types/design"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/subcommands/common"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
)

type Flag struct {
	View   string `flag:"view" alias:"v" help:"Id of the data view the run searches over. Default: view in forgeenv."`
	Effort int    `flag:"effort" help:"Override the effort of the spec file. Default: effort in forgeenv, then the spec file."`
}

type Submit func(
	ctx context.Context,
	client krst.ForgeClient,
	viewId string,
	spec design.Spec,
) (design.Run, error)

type Option struct {
	submit Submit
}

func WithRunner(submit Submit) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.submit = submit
		return opt
	}
}

const ARG_SPEC_FILE = "SPEC_FILE"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		submit: RunSubmit,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Start an asynchronous materials-design run.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_SPEC_FILE, Required: true,
				Help: `YAML file holding the design spec ( "-" for stdin ).`,
			},
		},
		common.NewTask(Task(option.submit)),
		flarc.WithDescription(`
Start an asynchronous materials-design run.

The spec file names the target column to optimize, the direction ( max or
min ), the number of candidates to propose, the search effort and optional
constraints on descriptors:

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

The run happens remotely. "{{ .Command }}" returns its run Id; poll it with
"design status" and fetch proposals with "design results".
`),
	)
}

func Task(submit Submit) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		forgeEnv env.ForgeEnv,
		client krst.ForgeClient,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()

		viewId := flags.View
		if viewId == "" {
			viewId = forgeEnv.DefaultView()
		}
		if viewId == "" {
			return fmt.Errorf(
				"%w: no data view: set --view or the view entry of forgeenv", flarc.ErrUsage,
			)
		}

		spec, err := readSpec(cl)
		if err != nil {
			return err
		}

		if flags.Effort != 0 {
			spec.Effort = flags.Effort
		} else if spec.Effort == 0 && forgeEnv.Effort != 0 {
			spec.Effort = forgeEnv.Effort
		}
		if spec.Sampler == "" {
			spec.Sampler = design.SamplerDefault
		}

		if err := spec.Verify(); err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		run, err := submit(ctx, client, viewId, *spec)
		if err != nil {
			return fmt.Errorf("%w: view Id:%s", err, viewId)
		}

		logger.Printf("design run %s is accepted on view %s", run.RunId, viewId)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(run); err != nil {
			logger.Panicf("fail to dump design run")
		}
		return nil
	}
}

func readSpec(cl flarc.Commandline[Flag]) (*design.Spec, error) {
	source := cl.Args()[ARG_SPEC_FILE][0]

	var r io.Reader
	if source == "-" {
		r = cl.Stdin()
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	spec := new(design.Spec)
	if err := yaml.Unmarshal(content, spec); err != nil {
		return nil, fmt.Errorf("%w: %s is not a design spec", err, source)
	}
	return spec, nil
}

func RunSubmit(
	ctx context.Context, client krst.ForgeClient, viewId string, spec design.Spec,
) (design.Run, error) {
	return client.SubmitDesignRun(ctx, viewId, spec)
}
