package predictions

import (
	"fmt"

	"github.com/forgeml/matforge-api-types/internal/utils/cmp"
	"github.com/forgeml/matforge-api-types/misc/scalar"
)

// Method selects how the remote models evaluate candidates.
type Method string

const (
	// MethodScalar evaluates each candidate at its given descriptor values.
	MethodScalar Method = "scalar"

	// MethodFromDistribution samples candidate descriptors from the model's
	// input distribution before evaluating.
	MethodFromDistribution Method = "fromDistribution"
)

func AsMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodScalar, MethodFromDistribution:
		return m, nil
	default:
		return "", fmt.Errorf(
			`prediction method should be "scalar" or "fromDistribution": %s`, s,
		)
	}
}

// Candidate is a material to be evaluated: descriptor name to value.
type Candidate map[string]scalar.Scalar

func (c Candidate) Equal(o Candidate) bool {
	return cmp.MapEqual(c, o)
}

type Request struct {
	Candidates []Candidate `json:"candidates"`
	Method     Method      `json:"method"`
	UsePrior   bool        `json:"usePrior"`
}

func (r Request) Equal(o Request) bool {
	return r.Method == o.Method &&
		r.UsePrior == o.UsePrior &&
		cmp.SliceEqual(r.Candidates, o.Candidates)
}

// Predicted is one predicted property: the value and the model's estimate of
// its own error. Loss is absent for categorical values.
type Predicted struct {
	Value scalar.Scalar `json:"value"`
	Loss  *float64      `json:"loss,omitempty"`
}

func (p Predicted) Equal(o Predicted) bool {
	lossEq := (p.Loss == nil && o.Loss == nil) ||
		(p.Loss != nil && o.Loss != nil && *p.Loss == *o.Loss)

	return p.Value.Equal(o.Value) && lossEq
}

// Prediction is the evaluation of one candidate: every input and output
// column of the view mapped to its predicted value.
type Prediction struct {
	Values map[string]Predicted `json:"values"`
}

func (p Prediction) Equal(o Prediction) bool {
	return cmp.MapEqual(p.Values, o.Values)
}

// GetValue returns the predicted value of the named column.
func (p Prediction) GetValue(key string) (Predicted, bool) {
	v, ok := p.Values[key]
	return v, ok
}

type Result struct {
	Predictions []Prediction `json:"predictions"`
}

func (r Result) Equal(o Result) bool {
	return cmp.SliceEqual(r.Predictions, o.Predictions)
}
