package store

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/forgeml/matforge-api-types/datasets"
	"github.com/forgeml/matforge-api-types/design"
	"github.com/forgeml/matforge-api-types/misc/rfctime"
	"github.com/forgeml/matforge-api-types/misc/scalar"
	"github.com/forgeml/matforge-api-types/predictions"
	"github.com/forgeml/matforge-api-types/tsne"
	"github.com/forgeml/matforge-api-types/views"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid request")
)

// trainingPolls applied when a seed view does not set its own.
const defaultTrainingPolls = 3

// design runs reach "finished" after this many status polls.
const runPollsToFinish = 3

type SeedColumn struct {
	Name  string `yaml:"name"`
	Role  string `yaml:"role"`
	Units string `yaml:"units,omitempty"`
}

type SeedView struct {
	ViewId      string       `yaml:"viewId"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	DatasetIds  []string     `yaml:"datasetIds,omitempty"`
	Columns     []SeedColumn `yaml:"columns"`
	CreatedAt   string       `yaml:"createdAt,omitempty"`

	// TrainingPolls is how many status polls the view's services stay
	// not-ready after startup or retrain. 0 means ready at once.
	TrainingPolls int `yaml:"trainingPolls,omitempty"`

	// Broken marks the view's model services as failed.
	Broken       bool   `yaml:"broken,omitempty"`
	BrokenReason string `yaml:"brokenReason,omitempty"`
}

type SeedDataset struct {
	DatasetId   string `yaml:"datasetId"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// Seed is the fixture file the sandbox starts from.
type Seed struct {
	Views    []SeedView    `yaml:"views"`
	Datasets []SeedDataset `yaml:"datasets,omitempty"`
}

func LoadSeed(path string) (Seed, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, err
	}

	var seed Seed
	if err := yaml.Unmarshal(buf, &seed); err != nil {
		return Seed{}, fmt.Errorf("broken seed file %s: %w", path, err)
	}
	return seed, nil
}

// DefaultSeed is served when no seed file is given.
func DefaultSeed() Seed {
	return Seed{
		Views: []SeedView{
			{
				ViewId:     "view-demo",
				Name:       "steel alloys",
				DatasetIds: []string{"dataset-demo"},
				Columns: []SeedColumn{
					{Name: "formula", Role: "input"},
					{Name: "temperature", Role: "input", Units: "K"},
					{Name: "hardness", Role: "output", Units: "HV"},
				},
				TrainingPolls: defaultTrainingPolls,
			},
		},
		Datasets: []SeedDataset{
			{DatasetId: "dataset-demo", Name: "steel alloys"},
		},
	}
}

type viewState struct {
	detail views.Detail

	// status polls remaining until services get ready
	trainingLeft  int
	trainingTotal int

	broken       bool
	brokenReason string

	runs map[string]*runState
}

type runState struct {
	spec   design.Spec
	status design.Status
	polls  int
}

type fileBlob struct {
	data       []byte
	uploadedAt rfctime.RFC3339
}

type datasetState struct {
	summary datasets.Summary
	files   map[string]fileBlob
}

// Store is the whole in-memory state of the sandbox platform.
type Store struct {
	mu       sync.Mutex
	views    map[string]*viewState
	datasets map[string]*datasetState
}

func New(seed Seed) (*Store, error) {
	s := &Store{
		views:    map[string]*viewState{},
		datasets: map[string]*datasetState{},
	}

	for _, sv := range seed.Views {
		if sv.ViewId == "" {
			return nil, fmt.Errorf("%w: seed view %q has no viewId", ErrInvalid, sv.Name)
		}

		columns := make([]views.Column, len(sv.Columns))
		for i, sc := range sv.Columns {
			role, err := views.AsRole(sc.Role)
			if err != nil {
				return nil, fmt.Errorf("%w: seed view %s: %s", ErrInvalid, sv.ViewId, err)
			}
			columns[i] = views.Column{Name: sc.Name, Role: role, Units: sc.Units}
		}

		createdAt := rfctime.RFC3339(time.Now())
		if sv.CreatedAt != "" {
			t, err := rfctime.ParseRFC3339DateTime(sv.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("%w: seed view %s: %s", ErrInvalid, sv.ViewId, err)
			}
			createdAt = t
		}

		total := sv.TrainingPolls
		if total < 0 {
			total = 0
		}

		s.views[sv.ViewId] = &viewState{
			detail: views.Detail{
				Summary: views.Summary{
					ViewId:      sv.ViewId,
					Name:        sv.Name,
					Description: sv.Description,
					DatasetIds:  sv.DatasetIds,
					CreatedAt:   createdAt,
				},
				Columns: columns,
			},
			trainingLeft:  total,
			trainingTotal: total,
			broken:        sv.Broken,
			brokenReason:  sv.BrokenReason,
			runs:          map[string]*runState{},
		}
	}

	for _, sd := range seed.Datasets {
		if sd.DatasetId == "" {
			return nil, fmt.Errorf("%w: seed dataset %q has no datasetId", ErrInvalid, sd.Name)
		}
		s.datasets[sd.DatasetId] = &datasetState{
			summary: datasets.Summary{
				DatasetId:   sd.DatasetId,
				Name:        sd.Name,
				Description: sd.Description,
				CreatedAt:   rfctime.RFC3339(time.Now()),
			},
			files: map[string]fileBlob{},
		}
	}

	return s, nil
}

func (s *Store) GetView(viewId string) (views.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewId]
	if !ok {
		return views.Detail{}, fmt.Errorf("%w: viewId:%s", ErrNotFound, viewId)
	}
	return v.detail, nil
}

// ViewQuery filters FindViews. Zero values mean "no filter".
type ViewQuery struct {
	Name       string
	DatasetIds []string
	Since      *time.Time
}

func (s *Store) FindViews(query ViewQuery) []views.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := []views.Summary{}
	for _, v := range s.views {
		sum := v.detail.Summary
		if query.Name != "" && !strings.Contains(sum.Name, query.Name) {
			continue
		}
		if len(query.DatasetIds) > 0 && !containsAny(sum.DatasetIds, query.DatasetIds) {
			continue
		}
		if query.Since != nil && sum.CreatedAt.Time().Before(*query.Since) {
			continue
		}
		found = append(found, sum)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].ViewId < found[j].ViewId })
	return found
}

func containsAny(have []string, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Retrain puts the view's model services back into training.
func (s *Store) Retrain(viewId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewId]
	if !ok {
		return fmt.Errorf("%w: viewId:%s", ErrNotFound, viewId)
	}

	total := v.trainingTotal
	if total <= 0 {
		total = defaultTrainingPolls
	}
	v.trainingTotal = total
	v.trainingLeft = total
	v.broken = false
	v.brokenReason = ""
	return nil
}

// ServiceStatus reports service readiness. Each call advances the simulated
// training one step, so repeated polls observe progress.
func (s *Store) ServiceStatus(viewId string) (views.ServiceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewId]
	if !ok {
		return views.ServiceStatus{}, fmt.Errorf("%w: viewId:%s", ErrNotFound, viewId)
	}

	if v.broken {
		reason := v.brokenReason
		if reason == "" {
			reason = "model training failed"
		}
		broken := views.Service{
			Ready: false, Context: views.ContextError, Reason: reason,
		}
		return views.ServiceStatus{
			Predict:      broken,
			Design:       broken,
			DataReports:  views.Service{Ready: true},
			ModelReports: broken,
		}, nil
	}

	if v.trainingLeft <= 0 {
		ready := views.Service{Ready: true}
		return views.ServiceStatus{
			Predict: ready, Design: ready, DataReports: ready, ModelReports: ready,
		}, nil
	}

	v.trainingLeft -= 1
	progress := float64(v.trainingTotal-v.trainingLeft) / float64(v.trainingTotal)
	training := views.Service{
		Ready:   false,
		Context: views.ContextNotice,
		Reason:  "services are being configured",
		Event: &views.Event{
			Title:    "Training models",
			Subtitle: fmt.Sprintf("viewId:%s", viewId),
			Progress: progress,
		},
	}
	return views.ServiceStatus{
		Predict:      training,
		Design:       training,
		DataReports:  views.Service{Ready: true},
		ModelReports: training,
	}, nil
}

func (v *viewState) ready() bool {
	return !v.broken && v.trainingLeft <= 0
}

// Tsne fabricates a stable projection per output column. Views whose models
// are not ready yet cannot be projected.
func (s *Store) Tsne(viewId string) (tsne.Tsne, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewId]
	if !ok {
		return tsne.Tsne{}, fmt.Errorf("%w: viewId:%s", ErrNotFound, viewId)
	}
	if !v.ready() {
		return tsne.Tsne{}, fmt.Errorf("%w: models of viewId:%s are not ready", ErrConflict, viewId)
	}

	projections := map[string]tsne.Projection{}
	for _, col := range v.detail.Columns {
		if col.Role != views.RoleOutput {
			continue
		}

		rng := rngFor(viewId, "tsne", col.Name)
		const n = 32
		p := tsne.Projection{
			X:         make([]float64, n),
			Y:         make([]float64, n),
			Responses: make([]float64, n),
			Labels:    make([]string, n),
			Uids:      make([]string, n),
		}
		for i := 0; i < n; i += 1 {
			p.X[i] = (rng.Float64() - 0.5) * 60
			p.Y[i] = (rng.Float64() - 0.5) * 60
			p.Responses[i] = rng.Float64() * 100
			p.Labels[i] = fmt.Sprintf("sample-%d", i)
			p.Uids[i] = fmt.Sprintf("%s-%s-%d", viewId, col.Name, i)
		}
		projections[col.Name] = p
	}

	return tsne.Tsne{Projections: projections}, nil
}

// Predict fabricates predictions: descriptor values given in a candidate are
// echoed back, the rest of the view's columns get stable pseudo-random
// numbers with a loss.
func (s *Store) Predict(viewId string, req predictions.Request) (predictions.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewId]
	if !ok {
		return predictions.Result{}, fmt.Errorf("%w: viewId:%s", ErrNotFound, viewId)
	}
	if !v.ready() {
		return predictions.Result{}, fmt.Errorf("%w: models of viewId:%s are not ready", ErrConflict, viewId)
	}
	if len(req.Candidates) == 0 {
		return predictions.Result{}, fmt.Errorf("%w: no candidates", ErrInvalid)
	}

	result := predictions.Result{
		Predictions: make([]predictions.Prediction, len(req.Candidates)),
	}
	for i, cand := range req.Candidates {
		values := map[string]predictions.Predicted{}
		for _, col := range v.detail.Columns {
			if col.Role == views.RoleIgnored {
				continue
			}

			if given, ok := cand[col.Name]; ok && req.Method == predictions.MethodScalar {
				values[col.Name] = predictions.Predicted{Value: given}
				continue
			}

			rng := rngFor(viewId, "predict", col.Name, fmt.Sprint(i))
			value := rng.Float64() * 100
			loss := 1 + rng.Float64()*value/10
			values[col.Name] = predictions.Predicted{
				Value: scalar.Number(value),
				Loss:  &loss,
			}
		}
		result.Predictions[i] = predictions.Prediction{Values: values}
	}

	return result, nil
}

func (s *Store) SubmitDesignRun(viewId string, spec design.Spec) (design.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewId]
	if !ok {
		return design.Run{}, fmt.Errorf("%w: viewId:%s", ErrNotFound, viewId)
	}
	if !v.ready() {
		return design.Run{}, fmt.Errorf("%w: models of viewId:%s are not ready", ErrConflict, viewId)
	}
	if err := spec.Verify(); err != nil {
		return design.Run{}, fmt.Errorf("%w: %s", ErrInvalid, err)
	}

	runId := uuid.NewString()
	v.runs[runId] = &runState{spec: spec, status: design.StatusAccepted}
	return design.Run{RunId: runId}, nil
}

// DesignRunStatus reports a run's progress. Each call advances the simulated
// run one step until it reaches a terminal status.
func (s *Store) DesignRunStatus(viewId string, runId string) (design.ProcessStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.run(viewId, runId)
	if err != nil {
		return design.ProcessStatus{}, err
	}

	if !run.status.Terminal() {
		switch {
		case run.polls >= runPollsToFinish:
			run.status = design.StatusFinished
		case run.polls >= 1:
			run.status = design.StatusRunning
		}
		run.polls += 1
	}

	status := design.ProcessStatus{
		RunId:    runId,
		Status:   run.status,
		Progress: float64(run.polls) / float64(runPollsToFinish+1),
		Messages: []string{"run accepted"},
	}
	if run.status == design.StatusFinished || status.Progress > 1 {
		status.Progress = 1
	}
	if run.status == design.StatusRunning {
		status.Messages = append(status.Messages, "sampling candidate space")
	}
	switch run.status {
	case design.StatusFinished:
		status.Messages = append(status.Messages, "optimization finished")
	case design.StatusKilled:
		status.Messages = append(status.Messages, "run killed on request")
	}
	return status, nil
}

// DesignRunResults fabricates candidates honoring the run's constraints.
// Results exist for finished runs only.
func (s *Store) DesignRunResults(viewId string, runId string) (design.Results, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.run(viewId, runId)
	if err != nil {
		return design.Results{}, err
	}
	if run.status != design.StatusFinished {
		return design.Results{}, fmt.Errorf(
			"%w: runId:%s is %s, not finished", ErrConflict, runId, run.status,
		)
	}

	v := s.views[viewId]
	spec := run.spec

	candidates := func(kind string) []design.Candidate {
		cands := make([]design.Candidate, spec.NumCandidates)
		for i := range cands {
			rng := rngFor(viewId, runId, kind, fmt.Sprint(i))

			descriptors := map[string]scalar.Scalar{}
			for _, col := range v.detail.Columns {
				if col.Role != views.RoleInput {
					continue
				}
				descriptors[col.Name] = scalar.Number(rng.Float64() * 100)
			}
			for _, c := range spec.Constraints {
				descriptors[c.Name] = constrainedValue(c, rng)
			}

			score := 100 - float64(i)*rng.Float64()*10
			cands[i] = design.Candidate{
				DescriptorValues: descriptors,
				Score:            score,
				Uncertainty:      1 + rng.Float64()*5,
			}
		}
		return cands
	}

	return design.Results{
		BestMaterials:   candidates("best"),
		NextExperiments: candidates("next"),
	}, nil
}

func constrainedValue(c design.Constraint, rng *rand.Rand) scalar.Scalar {
	switch c.Type {
	case design.ConstraintReal:
		return scalar.Number(*c.Value)
	case design.ConstraintRealRange:
		min, max := 0.0, 100.0
		if c.Min != nil {
			min = *c.Min
		}
		if c.Max != nil {
			max = *c.Max
		}
		return scalar.Number(min + rng.Float64()*(max-min))
	case design.ConstraintCategorical:
		return scalar.Category(c.Categories[rng.Intn(len(c.Categories))])
	default:
		return scalar.Number(rng.Float64() * 100)
	}
}

func (s *Store) KillDesignRun(viewId string, runId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.run(viewId, runId)
	if err != nil {
		return err
	}
	if run.status.Terminal() {
		return fmt.Errorf("%w: runId:%s is already %s", ErrConflict, runId, run.status)
	}

	run.status = design.StatusKilled
	return nil
}

// callers hold s.mu.
func (s *Store) run(viewId string, runId string) (*runState, error) {
	v, ok := s.views[viewId]
	if !ok {
		return nil, fmt.Errorf("%w: viewId:%s", ErrNotFound, viewId)
	}
	run, ok := v.runs[runId]
	if !ok {
		return nil, fmt.Errorf("%w: runId:%s", ErrNotFound, runId)
	}
	return run, nil
}

func (s *Store) CreateDataset(spec datasets.Spec) (datasets.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spec.Name == "" {
		return datasets.Summary{}, fmt.Errorf("%w: dataset has no name", ErrInvalid)
	}

	summary := datasets.Summary{
		DatasetId:   uuid.NewString(),
		Name:        spec.Name,
		Description: spec.Description,
		CreatedAt:   rfctime.RFC3339(time.Now()),
	}
	s.datasets[summary.DatasetId] = &datasetState{
		summary: summary,
		files:   map[string]fileBlob{},
	}
	return summary, nil
}

func (s *Store) ListDatasetFiles(datasetId string) ([]datasets.FileEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.datasets[datasetId]
	if !ok {
		return nil, fmt.Errorf("%w: datasetId:%s", ErrNotFound, datasetId)
	}

	entries := make([]datasets.FileEntry, 0, len(d.files))
	for path, blob := range d.files {
		entries = append(entries, datasets.FileEntry{
			Path:       path,
			Size:       int64(len(blob.data)),
			UploadedAt: blob.uploadedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// PutFile stores the file content read from r. Re-uploading a path
// overwrites the previous content.
func (s *Store) PutFile(datasetId string, path string, r io.Reader) (datasets.FileEntry, error) {
	if path == "" {
		return datasets.FileEntry{}, fmt.Errorf("%w: file has no path", ErrInvalid)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return datasets.FileEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.datasets[datasetId]
	if !ok {
		return datasets.FileEntry{}, fmt.Errorf("%w: datasetId:%s", ErrNotFound, datasetId)
	}

	blob := fileBlob{data: data, uploadedAt: rfctime.RFC3339(time.Now())}
	d.files[path] = blob
	return datasets.FileEntry{
		Path:       path,
		Size:       int64(len(data)),
		UploadedAt: blob.uploadedAt,
	}, nil
}

func (s *Store) GetFile(datasetId string, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.datasets[datasetId]
	if !ok {
		return nil, fmt.Errorf("%w: datasetId:%s", ErrNotFound, datasetId)
	}
	blob, ok := d.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: file %s in datasetId:%s", ErrNotFound, path, datasetId)
	}
	return blob.data, nil
}

// rngFor gives a generator seeded from its arguments, so fabricated numbers
// are stable across calls and restarts.
func rngFor(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
