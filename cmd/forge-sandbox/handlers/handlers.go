package handlers

import (
	"errors"
	"io"

	"github.com/forgeml/matforge-api-types/datasets"
	"github.com/forgeml/matforge-api-types/design"
	"github.com/forgeml/matforge-api-types/predictions"
	"github.com/forgeml/matforge-api-types/tsne"
	"github.com/forgeml/matforge-api-types/views"
	"github.com/forgeml/matforge/cmd/forge-sandbox/store"
	binderr "github.com/forgeml/matforge/pkg/api-binding/errors"
	"github.com/labstack/echo/v4"
)

type ViewStore interface {
	GetView(viewId string) (views.Detail, error)
	FindViews(query store.ViewQuery) []views.Summary
	Retrain(viewId string) error
	ServiceStatus(viewId string) (views.ServiceStatus, error)
	Tsne(viewId string) (tsne.Tsne, error)
	Predict(viewId string, req predictions.Request) (predictions.Result, error)
}

type DesignStore interface {
	SubmitDesignRun(viewId string, spec design.Spec) (design.Run, error)
	DesignRunStatus(viewId string, runId string) (design.ProcessStatus, error)
	DesignRunResults(viewId string, runId string) (design.Results, error)
	KillDesignRun(viewId string, runId string) error
}

type DatasetStore interface {
	CreateDataset(spec datasets.Spec) (datasets.Summary, error)
	ListDatasetFiles(datasetId string) ([]datasets.FileEntry, error)
	PutFile(datasetId string, path string, r io.Reader) (datasets.FileEntry, error)
	GetFile(datasetId string, path string) ([]byte, error)
}

var _ ViewStore = &store.Store{}
var _ DesignStore = &store.Store{}
var _ DatasetStore = &store.Store{}

func bindStoreError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return binderr.NotFound()
	case errors.Is(err, store.ErrInvalid):
		return binderr.BadRequest(err.Error(), err)
	case errors.Is(err, store.ErrConflict):
		return binderr.Conflict(err.Error(), binderr.WithError(err))
	default:
		return binderr.InternalServerError(err)
	}
}
