package design

import (
	"encoding/json"
	"fmt"

	"github.com/forgeml/matforge-api-types/internal/utils/cmp"
	"github.com/forgeml/matforge-api-types/misc/scalar"
)

type Objective string

const (
	ObjectiveMax Objective = "max"
	ObjectiveMin Objective = "min"
)

func AsObjective(s string) (Objective, error) {
	switch o := Objective(s); o {
	case ObjectiveMax, ObjectiveMin:
		return o, nil
	default:
		return "", fmt.Errorf(`objective should be "max" or "min": %s`, s)
	}
}

// Target is the output column a design run optimizes, and in which direction.
type Target struct {
	Name      string    `json:"name" yaml:"name"`
	Objective Objective `json:"objective" yaml:"objective"`
}

func (t Target) Equal(o Target) bool {
	return t.Name == o.Name && t.Objective == o.Objective
}

type ConstraintType string

const (
	// ConstraintReal pins a descriptor to an exact numeric value.
	ConstraintReal ConstraintType = "real"

	// ConstraintRealRange keeps a descriptor inside [Min, Max].
	ConstraintRealRange ConstraintType = "realRange"

	// ConstraintCategorical restricts a descriptor to the listed categories.
	ConstraintCategorical ConstraintType = "categorical"
)

// Constraint narrows the candidate space of a design run.
//
// The fields other than Name and Type are meaningful per Type only.
type Constraint struct {
	Name       string         `json:"name" yaml:"name"`
	Type       ConstraintType `json:"type" yaml:"type"`
	Value      *float64       `json:"value,omitempty" yaml:"value,omitempty"`
	Min        *float64       `json:"min,omitempty" yaml:"min,omitempty"`
	Max        *float64       `json:"max,omitempty" yaml:"max,omitempty"`
	Categories []string       `json:"categories,omitempty" yaml:"categories,omitempty"`
}

func (c Constraint) Equal(o Constraint) bool {
	ptrEq := func(a, b *float64) bool {
		return (a == nil && b == nil) || (a != nil && b != nil && *a == *b)
	}
	if len(c.Categories) != len(o.Categories) {
		return false
	}
	for i, cat := range c.Categories {
		if cat != o.Categories[i] {
			return false
		}
	}
	return c.Name == o.Name &&
		c.Type == o.Type &&
		ptrEq(c.Value, o.Value) &&
		ptrEq(c.Min, o.Min) &&
		ptrEq(c.Max, o.Max)
}

// Verify checks the constraint is self-consistent.
func (c Constraint) Verify() error {
	if c.Name == "" {
		return fmt.Errorf("constraint has no descriptor name")
	}
	switch c.Type {
	case ConstraintReal:
		if c.Value == nil {
			return fmt.Errorf(`constraint %s: type "real" requires "value"`, c.Name)
		}
	case ConstraintRealRange:
		if c.Min == nil && c.Max == nil {
			return fmt.Errorf(`constraint %s: type "realRange" requires "min" and/or "max"`, c.Name)
		}
		if c.Min != nil && c.Max != nil && *c.Max < *c.Min {
			return fmt.Errorf("constraint %s: max (%f) < min (%f)", c.Name, *c.Max, *c.Min)
		}
	case ConstraintCategorical:
		if len(c.Categories) == 0 {
			return fmt.Errorf(`constraint %s: type "categorical" requires "categories"`, c.Name)
		}
	default:
		return fmt.Errorf(
			`constraint %s: type should be one of "real", "realRange" or "categorical": %s`,
			c.Name, c.Type,
		)
	}
	return nil
}

type Sampler string

const (
	// SamplerDefault draws candidates from the whole descriptor space.
	SamplerDefault Sampler = "default"

	// SamplerThisView draws candidates from rows already in the view.
	SamplerThisView Sampler = "thisView"
)

func AsSampler(s string) (Sampler, error) {
	switch sm := Sampler(s); sm {
	case SamplerDefault, SamplerThisView:
		return sm, nil
	default:
		return "", fmt.Errorf(`sampler should be "default" or "thisView": %s`, s)
	}
}

// Spec is a design-run submission. It is also the schema of the YAML file
// `forge design submit --file` reads.
type Spec struct {
	NumCandidates int          `json:"numCandidates" yaml:"numCandidates"`
	Effort        int          `json:"effort" yaml:"effort"`
	Target        Target       `json:"target" yaml:"target"`
	Constraints   []Constraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Sampler       Sampler      `json:"sampler" yaml:"sampler"`
}

func (s Spec) Equal(o Spec) bool {
	return s.NumCandidates == o.NumCandidates &&
		s.Effort == o.Effort &&
		s.Target.Equal(o.Target) &&
		s.Sampler == o.Sampler &&
		cmp.SliceEqual(s.Constraints, o.Constraints)
}

// Effort is bounded by the platform; out-of-range submissions are rejected
// before any request is sent.
const (
	MinEffort = 1
	MaxEffort = 30
)

func (s Spec) Verify() error {
	if s.NumCandidates <= 0 {
		return fmt.Errorf("numCandidates should be positive: %d", s.NumCandidates)
	}
	if s.Effort < MinEffort || MaxEffort < s.Effort {
		return fmt.Errorf("effort should be in [%d, %d]: %d", MinEffort, MaxEffort, s.Effort)
	}
	if s.Target.Name == "" {
		return fmt.Errorf("target has no column name")
	}
	if _, err := AsObjective(string(s.Target.Objective)); err != nil {
		return err
	}
	if _, err := AsSampler(string(s.Sampler)); err != nil {
		return err
	}
	for _, c := range s.Constraints {
		if err := c.Verify(); err != nil {
			return err
		}
	}
	return nil
}

// Run identifies a submitted design run.
type Run struct {
	RunId string `json:"runId"`
}

func (r Run) Equal(o Run) bool {
	return r.RunId == o.RunId
}

type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusKilled   Status = "killed"
	StatusError    Status = "error"
)

func AsStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusAccepted, StatusRunning, StatusFinished, StatusKilled, StatusError:
		return st, nil
	default:
		return "", fmt.Errorf(
			`status should be one of "accepted", "running", "finished", "killed" or "error": %s`, s,
		)
	}
}

// Terminal reports whether the run has stopped moving: results either exist
// now or never will.
func (s Status) Terminal() bool {
	switch s {
	case StatusFinished, StatusKilled, StatusError:
		return true
	default:
		return false
	}
}

type ProcessStatus struct {
	RunId    string   `json:"runId"`
	Status   Status   `json:"status"`
	Progress float64  `json:"progress"`
	Messages []string `json:"messages,omitempty"`
}

func (p ProcessStatus) Equal(o ProcessStatus) bool {
	if len(p.Messages) != len(o.Messages) {
		return false
	}
	for i, m := range p.Messages {
		if m != o.Messages[i] {
			return false
		}
	}
	return p.RunId == o.RunId &&
		p.Status == o.Status &&
		p.Progress == o.Progress
}

// implement encoding/json.Unmarshaller
func (p *ProcessStatus) UnmarshalJSON(b []byte) error {
	f := new(struct {
		RunId    *string  `json:"runId"`
		Status   *string  `json:"status"`
		Progress float64  `json:"progress"`
		Messages []string `json:"messages,omitempty"`
	})
	if err := json.Unmarshal(b, f); err != nil {
		return err
	}
	if f.RunId == nil {
		return fmt.Errorf(`required field missing: "runId"`)
	}
	if f.Status == nil {
		return fmt.Errorf(`required field missing: "status"`)
	}
	status, err := AsStatus(*f.Status)
	if err != nil {
		return err
	}

	p.RunId = *f.RunId
	p.Status = status
	p.Progress = f.Progress
	p.Messages = f.Messages
	return nil
}

// Candidate is a material suggested by a finished design run.
type Candidate struct {
	DescriptorValues map[string]scalar.Scalar `json:"descriptorValues"`

	// Score ranks the candidate against the run's target.
	Score float64 `json:"score"`

	// Uncertainty is the model's estimated error of Score.
	Uncertainty float64 `json:"uncertainty"`
}

func (c Candidate) Equal(o Candidate) bool {
	return c.Score == o.Score &&
		c.Uncertainty == o.Uncertainty &&
		cmp.MapEqual(c.DescriptorValues, o.DescriptorValues)
}

type Results struct {
	// BestMaterials maximize expected performance against the target.
	BestMaterials []Candidate `json:"bestMaterials"`

	// NextExperiments maximize information gained when measured.
	NextExperiments []Candidate `json:"nextExperiments"`
}

func (r Results) Equal(o Results) bool {
	return cmp.SliceEqual(r.BestMaterials, o.BestMaterials) &&
		cmp.SliceEqual(r.NextExperiments, o.NextExperiments)
}
