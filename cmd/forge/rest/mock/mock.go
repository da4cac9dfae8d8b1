package mock

import (
	"context"
	"io"
	"testing"

	"github.com/forgeml/matforge-api-types/datasets"
	"github.com/forgeml/matforge-api-types/design"
	"github.com/forgeml/matforge-api-types/predictions"
	"github.com/forgeml/matforge-api-types/tsne"
	"github.com/forgeml/matforge-api-types/views"
	"github.com/forgeml/matforge/cmd/forge/rest"
)

func New(t *testing.T) *MockForgeClient {
	return &MockForgeClient{t: t}
}

// MockForgeClient implements rest.ForgeClient with injectable behaviours.
//
// Calling a method whose Impl is not set fails the test.
type MockForgeClient struct {
	t *testing.T

	Impl struct {
		GetDataView         func(ctx context.Context, viewId string) (views.Detail, error)
		FindDataViews       func(ctx context.Context, query rest.FindViewParameter) ([]views.Summary, error)
		Retrain             func(ctx context.Context, viewId string) error
		ServiceStatus       func(ctx context.Context, viewId string) (views.ServiceStatus, error)
		GetTsne             func(ctx context.Context, viewId string) (tsne.Tsne, error)
		Predict             func(ctx context.Context, viewId string, req predictions.Request) (predictions.Result, error)
		SubmitDesignRun     func(ctx context.Context, viewId string, spec design.Spec) (design.Run, error)
		GetDesignRunStatus  func(ctx context.Context, viewId string, runId string) (design.ProcessStatus, error)
		GetDesignRunResults func(ctx context.Context, viewId string, runId string) (design.Results, error)
		KillDesignRun       func(ctx context.Context, viewId string, runId string) error
		CreateDataset       func(ctx context.Context, spec datasets.Spec) (datasets.Summary, error)
		ListDatasetFiles    func(ctx context.Context, datasetId string) ([]datasets.FileEntry, error)
		UploadFile          func(ctx context.Context, datasetId string, source string) rest.Progress[*datasets.FileEntry]
		GetFileRaw          func(ctx context.Context, datasetId string, path string, handler func(io.Reader) error) error
	}

	Calls struct {
		GetDataView        []string
		Retrain            []string
		ServiceStatus      []string
		GetTsne            []string
		Predict            []PredictArgs
		SubmitDesignRun    []SubmitDesignRunArgs
		GetDesignRunStatus []DesignRunArgs
		KillDesignRun      []DesignRunArgs
	}
}

type PredictArgs struct {
	ViewId  string
	Request predictions.Request
}

type SubmitDesignRunArgs struct {
	ViewId string
	Spec   design.Spec
}

type DesignRunArgs struct {
	ViewId string
	RunId  string
}

var _ rest.ForgeClient = &MockForgeClient{}

func (m *MockForgeClient) GetDataView(ctx context.Context, viewId string) (views.Detail, error) {
	m.t.Helper()
	if m.Impl.GetDataView == nil {
		m.t.Fatal("GetDataView is not expected to be called")
	}
	m.Calls.GetDataView = append(m.Calls.GetDataView, viewId)
	return m.Impl.GetDataView(ctx, viewId)
}

func (m *MockForgeClient) FindDataViews(ctx context.Context, query rest.FindViewParameter) ([]views.Summary, error) {
	m.t.Helper()
	if m.Impl.FindDataViews == nil {
		m.t.Fatal("FindDataViews is not expected to be called")
	}
	return m.Impl.FindDataViews(ctx, query)
}

func (m *MockForgeClient) Retrain(ctx context.Context, viewId string) error {
	m.t.Helper()
	if m.Impl.Retrain == nil {
		m.t.Fatal("Retrain is not expected to be called")
	}
	m.Calls.Retrain = append(m.Calls.Retrain, viewId)
	return m.Impl.Retrain(ctx, viewId)
}

func (m *MockForgeClient) ServiceStatus(ctx context.Context, viewId string) (views.ServiceStatus, error) {
	m.t.Helper()
	if m.Impl.ServiceStatus == nil {
		m.t.Fatal("ServiceStatus is not expected to be called")
	}
	m.Calls.ServiceStatus = append(m.Calls.ServiceStatus, viewId)
	return m.Impl.ServiceStatus(ctx, viewId)
}

func (m *MockForgeClient) GetTsne(ctx context.Context, viewId string) (tsne.Tsne, error) {
	m.t.Helper()
	if m.Impl.GetTsne == nil {
		m.t.Fatal("GetTsne is not expected to be called")
	}
	m.Calls.GetTsne = append(m.Calls.GetTsne, viewId)
	return m.Impl.GetTsne(ctx, viewId)
}

func (m *MockForgeClient) Predict(
	ctx context.Context, viewId string, req predictions.Request,
) (predictions.Result, error) {
	m.t.Helper()
	if m.Impl.Predict == nil {
		m.t.Fatal("Predict is not expected to be called")
	}
	m.Calls.Predict = append(m.Calls.Predict, PredictArgs{ViewId: viewId, Request: req})
	return m.Impl.Predict(ctx, viewId, req)
}

func (m *MockForgeClient) SubmitDesignRun(
	ctx context.Context, viewId string, spec design.Spec,
) (design.Run, error) {
	m.t.Helper()
	if m.Impl.SubmitDesignRun == nil {
		m.t.Fatal("SubmitDesignRun is not expected to be called")
	}
	m.Calls.SubmitDesignRun = append(
		m.Calls.SubmitDesignRun, SubmitDesignRunArgs{ViewId: viewId, Spec: spec},
	)
	return m.Impl.SubmitDesignRun(ctx, viewId, spec)
}

func (m *MockForgeClient) GetDesignRunStatus(
	ctx context.Context, viewId string, runId string,
) (design.ProcessStatus, error) {
	m.t.Helper()
	if m.Impl.GetDesignRunStatus == nil {
		m.t.Fatal("GetDesignRunStatus is not expected to be called")
	}
	m.Calls.GetDesignRunStatus = append(
		m.Calls.GetDesignRunStatus, DesignRunArgs{ViewId: viewId, RunId: runId},
	)
	return m.Impl.GetDesignRunStatus(ctx, viewId, runId)
}

func (m *MockForgeClient) GetDesignRunResults(
	ctx context.Context, viewId string, runId string,
) (design.Results, error) {
	m.t.Helper()
	if m.Impl.GetDesignRunResults == nil {
		m.t.Fatal("GetDesignRunResults is not expected to be called")
	}
	return m.Impl.GetDesignRunResults(ctx, viewId, runId)
}

func (m *MockForgeClient) KillDesignRun(ctx context.Context, viewId string, runId string) error {
	m.t.Helper()
	if m.Impl.KillDesignRun == nil {
		m.t.Fatal("KillDesignRun is not expected to be called")
	}
	m.Calls.KillDesignRun = append(
		m.Calls.KillDesignRun, DesignRunArgs{ViewId: viewId, RunId: runId},
	)
	return m.Impl.KillDesignRun(ctx, viewId, runId)
}

func (m *MockForgeClient) CreateDataset(
	ctx context.Context, spec datasets.Spec,
) (datasets.Summary, error) {
	m.t.Helper()
	if m.Impl.CreateDataset == nil {
		m.t.Fatal("CreateDataset is not expected to be called")
	}
	return m.Impl.CreateDataset(ctx, spec)
}

func (m *MockForgeClient) ListDatasetFiles(
	ctx context.Context, datasetId string,
) ([]datasets.FileEntry, error) {
	m.t.Helper()
	if m.Impl.ListDatasetFiles == nil {
		m.t.Fatal("ListDatasetFiles is not expected to be called")
	}
	return m.Impl.ListDatasetFiles(ctx, datasetId)
}

func (m *MockForgeClient) UploadFile(
	ctx context.Context, datasetId string, source string,
) rest.Progress[*datasets.FileEntry] {
	m.t.Helper()
	if m.Impl.UploadFile == nil {
		m.t.Fatal("UploadFile is not expected to be called")
	}
	return m.Impl.UploadFile(ctx, datasetId, source)
}

func (m *MockForgeClient) GetFileRaw(
	ctx context.Context, datasetId string, path string, handler func(io.Reader) error,
) error {
	m.t.Helper()
	if m.Impl.GetFileRaw == nil {
		m.t.Fatal("GetFileRaw is not expected to be called")
	}
	return m.Impl.GetFileRaw(ctx, datasetId, path, handler)
}
