package views

import (
	"encoding/json"
	"fmt"

	"github.com/forgeml/matforge-api-types/internal/utils/cmp"
	"github.com/forgeml/matforge-api-types/misc/rfctime"
)

// Role of a column within a data view.
type Role string

const (
	RoleInput          Role = "input"
	RoleOutput         Role = "output"
	RoleLatentVariable Role = "latentVariable"
	RoleIgnored        Role = "ignored"
)

func AsRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleInput, RoleOutput, RoleLatentVariable, RoleIgnored:
		return r, nil
	default:
		return "", fmt.Errorf(
			`role should be one of "input", "output", "latentVariable" or "ignored": %s`, s,
		)
	}
}

type Column struct {
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	GroupByKey bool   `json:"groupByKey,omitempty"`
	Units      string `json:"units,omitempty"`
}

func (c Column) Equal(o Column) bool {
	return c.Name == o.Name &&
		c.Role == o.Role &&
		c.GroupByKey == o.GroupByKey &&
		c.Units == o.Units
}

type Summary struct {
	ViewId      string          `json:"viewId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	DatasetIds  []string        `json:"datasetIds"`
	CreatedAt   rfctime.RFC3339 `json:"createdAt"`
}

func (s Summary) Equal(o Summary) bool {
	if len(s.DatasetIds) != len(o.DatasetIds) {
		return false
	}
	for i, d := range s.DatasetIds {
		if d != o.DatasetIds[i] {
			return false
		}
	}
	return s.ViewId == o.ViewId &&
		s.Name == o.Name &&
		s.Description == o.Description &&
		s.CreatedAt.Equal(o.CreatedAt)
}

type Detail struct {
	Summary
	Columns []Column `json:"columns"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		cmp.SliceEqual(d.Columns, o.Columns)
}

// Event reports the model-training step a service is working through.
type Event struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Progress float64 `json:"normalizedProgress"`
}

func (e Event) Equal(o Event) bool {
	return e.Title == o.Title &&
		e.Subtitle == o.Subtitle &&
		e.Progress == o.Progress
}

// Context qualifies a not-ready service: still converging, or broken.
const (
	ContextNotice = "notice"
	ContextError  = "error"
)

// Service is the readiness report of one platform service backed by a view's
// trained models.
type Service struct {
	Ready   bool   `json:"ready"`
	Context string `json:"context,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Event   *Event `json:"event,omitempty"`
}

func (s Service) Equal(o Service) bool {
	eventEq := (s.Event == nil && o.Event == nil) ||
		(s.Event != nil && o.Event != nil && s.Event.Equal(*o.Event))

	return s.Ready == o.Ready &&
		s.Context == o.Context &&
		s.Reason == o.Reason &&
		eventEq
}

// Broken means the service reported an error context and will not become
// ready without operator intervention.
func (s Service) Broken() bool {
	return !s.Ready && s.Context == ContextError
}

type ServiceStatus struct {
	Predict      Service `json:"predict"`
	Design       Service `json:"design"`
	DataReports  Service `json:"dataReports"`
	ModelReports Service `json:"modelReports"`
}

func (st ServiceStatus) Equal(o ServiceStatus) bool {
	return st.Predict.Equal(o.Predict) &&
		st.Design.Equal(o.Design) &&
		st.DataReports.Equal(o.DataReports) &&
		st.ModelReports.Equal(o.ModelReports)
}

// implement encoding/json.Unmarshaller
//
// "role" outside the known set is rejected here, not downstream.
func (c *Column) UnmarshalJSON(b []byte) error {
	f := new(struct {
		Name       *string `json:"name"`
		Role       *string `json:"role"`
		GroupByKey bool    `json:"groupByKey,omitempty"`
		Units      string  `json:"units,omitempty"`
	})
	if err := json.Unmarshal(b, f); err != nil {
		return err
	}
	if f.Name == nil {
		return fmt.Errorf(`required field missing: "name"`)
	}
	if f.Role == nil {
		return fmt.Errorf(`required field missing: "role"`)
	}
	role, err := AsRole(*f.Role)
	if err != nil {
		return err
	}

	c.Name = *f.Name
	c.Role = role
	c.GroupByKey = f.GroupByKey
	c.Units = f.Units
	return nil
}
