package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forgeml/matforge-api-types/datasets"
	"github.com/forgeml/matforge-api-types/design"
	"github.com/forgeml/matforge-api-types/predictions"
	"github.com/forgeml/matforge-api-types/tsne"
	"github.com/forgeml/matforge-api-types/views"
	kprof "github.com/forgeml/matforge/cmd/forge/config/profiles"
	"github.com/forgeml/matforge/pkg/utils/slices"
)

// FindViewParameter narrows FindDataViews.
type FindViewParameter struct {
	// Name matches views whose name contains it.
	Name string

	// DatasetIds matches views built on all of these datasets.
	DatasetIds []string

	// CreatedSince drops views created before it.
	CreatedSince *time.Time
}

type ForgeClient interface {
	// GetDataView get data view detail with given viewId.
	//
	// # Args
	//
	// - context.Context
	//
	// - string: viewId to be found
	//
	// # Returns
	//
	// - views.Detail: metadata of found data view
	//
	// - error
	GetDataView(ctx context.Context, viewId string) (views.Detail, error)

	// FindDataViews find data views matching the given query.
	FindDataViews(ctx context.Context, query FindViewParameter) ([]views.Summary, error)

	// Retrain asks the platform to retrain all models of a data view.
	//
	// Training happens remotely; track it with ServiceStatus.
	Retrain(ctx context.Context, viewId string) error

	// ServiceStatus reports readiness of the services backed by a view's
	// models (predict, design, reports).
	ServiceStatus(ctx context.Context, viewId string) (views.ServiceStatus, error)

	// GetTsne retrieves the t-SNE projections computed for a view.
	//
	// The embedding itself is computed remotely when models are trained.
	GetTsne(ctx context.Context, viewId string) (tsne.Tsne, error)

	// Predict evaluates candidates against the view's trained models.
	Predict(ctx context.Context, viewId string, req predictions.Request) (predictions.Result, error)

	// SubmitDesignRun starts an asynchronous materials-design run.
	//
	// # Returns
	//
	// - design.Run: identifier to poll with GetDesignRunStatus.
	//
	// - error
	SubmitDesignRun(ctx context.Context, viewId string, spec design.Spec) (design.Run, error)

	// GetDesignRunStatus polls one design run.
	GetDesignRunStatus(ctx context.Context, viewId string, runId string) (design.ProcessStatus, error)

	// GetDesignRunResults retrieves candidates of a finished design run.
	GetDesignRunResults(ctx context.Context, viewId string, runId string) (design.Results, error)

	// KillDesignRun aborts a design run. Killed runs have no results.
	KillDesignRun(ctx context.Context, viewId string, runId string) error

	// CreateDataset registers a new (empty) dataset.
	CreateDataset(ctx context.Context, spec datasets.Spec) (datasets.Summary, error)

	// ListDatasetFiles lists files uploaded to a dataset.
	ListDatasetFiles(ctx context.Context, datasetId string) ([]datasets.FileEntry, error)

	// UploadFile streams a local file into a dataset.
	//
	// # Args
	//
	// - string: datasetId to receive the file
	//
	// - string: path to the local file
	//
	// # Returns
	//
	// - Progress[*datasets.FileEntry]: progress of the upload. Wait on its
	// Done() channel; Result() holds the registered file entry.
	UploadFile(ctx context.Context, datasetId string, source string) Progress[*datasets.FileEntry]

	// GetFileRaw downloads a file of a dataset.
	//
	// # Args
	//
	// - string: datasetId
	//
	// - string: path of the file within the dataset
	//
	// - handler: function to be called for raw stream.
	// If handler returns an error, downloading is stopped and the error is returned.
	GetFileRaw(ctx context.Context, datasetId string, path string, handler func(io.Reader) error) error
}

type client struct {
	httpclient *http.Client
	api        string
}

// create new platform client for ForgeProfile
//
// # Args
//
// - *kprof.ForgeProfile
//
// # Return
//
// - ForgeClient: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(prof *kprof.ForgeProfile) (ForgeClient, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	if httpclient.Transport == nil {
		httpclient.Transport = http.DefaultTransport
	}
	httpclient.Transport = &apiKeyTransport{
		apiKey: prof.ApiKey,
		base:   httpclient.Transport,
	}

	c := &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
	}

	return c, nil
}

// apiKeyTransport adds the platform API key to each outgoing request.
type apiKeyTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Api-Key", t.apiKey)
	return t.base.RoundTrip(req)
}

// build URL with path
func (c *client) apipath(path ...string) string {
	path = slices.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})

	return strings.Join(append([]string{c.api}, path...), "/")
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
