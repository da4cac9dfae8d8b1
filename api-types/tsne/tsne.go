package tsne

import (
	"encoding/json"
	"fmt"

	"github.com/forgeml/matforge-api-types/internal/utils/cmp"
)

// Projection is the 2-dimensional t-SNE embedding computed remotely for one
// output column of a data view. All slices are index-aligned per point.
type Projection struct {
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
	Responses []float64 `json:"responses"`
	Labels    []string  `json:"labels"`
	Uids      []string  `json:"uids"`
}

// Len is the number of projected points.
func (p Projection) Len() int {
	return len(p.X)
}

func (p Projection) Equal(o Projection) bool {
	return floatsEq(p.X, o.X) &&
		floatsEq(p.Y, o.Y) &&
		floatsEq(p.Responses, o.Responses) &&
		stringsEq(p.Labels, o.Labels) &&
		stringsEq(p.Uids, o.Uids)
}

// implement encoding/json.Unmarshaller
//
// Coordinate arrays of uneven length cannot index-align, so they are rejected
// at decode time.
func (p *Projection) UnmarshalJSON(b []byte) error {
	f := new(struct {
		X         []float64 `json:"x"`
		Y         []float64 `json:"y"`
		Responses []float64 `json:"responses"`
		Labels    []string  `json:"labels"`
		Uids      []string  `json:"uids"`
	})
	if err := json.Unmarshal(b, f); err != nil {
		return err
	}

	n := len(f.X)
	if len(f.Y) != n ||
		(f.Responses != nil && len(f.Responses) != n) ||
		(f.Labels != nil && len(f.Labels) != n) ||
		(f.Uids != nil && len(f.Uids) != n) {
		return fmt.Errorf(
			"projection arrays are not aligned: x=%d y=%d responses=%d labels=%d uids=%d",
			n, len(f.Y), len(f.Responses), len(f.Labels), len(f.Uids),
		)
	}

	p.X = f.X
	p.Y = f.Y
	p.Responses = f.Responses
	p.Labels = f.Labels
	p.Uids = f.Uids
	return nil
}

// Tsne maps output column name to its projection.
type Tsne struct {
	Projections map[string]Projection `json:"projections"`
}

func (t Tsne) Equal(o Tsne) bool {
	return cmp.MapEqual(t.Projections, o.Projections)
}

// GetProjection returns the projection of the given output column.
func (t Tsne) GetProjection(key string) (Projection, bool) {
	p, ok := t.Projections[key]
	return p, ok
}

func floatsEq(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

func stringsEq(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}
