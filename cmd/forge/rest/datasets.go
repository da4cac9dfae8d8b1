package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/forgeml/matforge-api-types/datasets"
)

// Progress reports a streaming upload.
type Progress[T any] interface {
	// EstimatedTotalSize returns the size of the file to be sent.
	EstimatedTotalSize() int64

	// ProgressedSize returns the size sent so far.
	ProgressedSize() int64

	// ProgressingFile returns the file name which is currently being sent.
	ProgressingFile() string

	// Error returns error caused during uploading.
	Error() error

	// Result returns the result of the operation.
	//
	// # Returns
	//
	// - T: the result of the operation.
	//
	// - bool: true if the operation has been done.
	Result() (T, bool)

	// Done returns a channel which is closed when the upload is over.
	Done() <-chan struct{}

	// Sent returns a channel which is closed when the whole file has been
	// read out to the server.
	Sent() <-chan struct{}
}

type progress struct {
	total    int64
	sent     int64
	file     string
	e        error
	result   *datasets.FileEntry
	resultOk bool
	done     chan struct{}
	sentCh   chan struct{}
}

func (p *progress) EstimatedTotalSize() int64 {
	return atomic.LoadInt64(&p.total)
}

func (p *progress) ProgressedSize() int64 {
	return atomic.LoadInt64(&p.sent)
}

func (p *progress) ProgressingFile() string {
	return p.file
}

func (p *progress) Error() error {
	return p.e
}

func (p *progress) Result() (*datasets.FileEntry, bool) {
	return p.result, p.resultOk
}

func (p *progress) Done() <-chan struct{} {
	return p.done
}

func (p *progress) Sent() <-chan struct{} {
	return p.sentCh
}

// countingReader counts bytes read out of r and fires onEnd at EOF.
type countingReader struct {
	r     io.Reader
	count *int64
	onEnd func()
	ended bool
}

func (cr *countingReader) Read(buf []byte) (int, error) {
	n, err := cr.r.Read(buf)
	atomic.AddInt64(cr.count, int64(n))
	if err == io.EOF && !cr.ended {
		cr.ended = true
		if cr.onEnd != nil {
			cr.onEnd()
		}
	}
	return n, err
}

func (c *client) UploadFile(
	ctx context.Context, datasetId string, source string,
) Progress[*datasets.FileEntry] {
	prog := &progress{
		file:   source,
		done:   make(chan struct{}),
		sentCh: make(chan struct{}),
	}

	f, err := os.Open(source)
	if err != nil {
		prog.e = err
		close(prog.sentCh)
		close(prog.done)
		return prog
	}

	if stat, err := f.Stat(); err == nil {
		prog.total = stat.Size()
	}

	body := &countingReader{
		r: f, count: &prog.sent,
		onEnd: func() { close(prog.sentCh) },
	}

	dest := c.apipath("datasets", datasetId, "files") +
		"?path=" + url.QueryEscape(filepath.Base(source))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dest, body)
	if err != nil {
		f.Close()
		prog.e = err
		close(prog.sentCh)
		close(prog.done)
		return prog
	}
	req.Header.Add("Content-Type", "application/octet-stream")
	req.ContentLength = prog.total

	go func() {
		defer close(prog.done)
		defer f.Close()

		resp, err := c.httpclient.Do(req)
		if err != nil {
			prog.e = err
			return
		}
		defer resp.Body.Close()

		res := &datasets.FileEntry{}
		if err := unmarshalJsonResponse(
			resp, res,
			MessageFor{
				Status4xx: fmt.Sprintf("sending file is rejected by server (status code = %d)", resp.StatusCode),
				Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
			},
		); err != nil {
			prog.e = err
			return
		}

		prog.result = res
		prog.resultOk = true
	}()

	return prog
}

func (c *client) CreateDataset(ctx context.Context, spec datasets.Spec) (datasets.Summary, error) {
	reqBody, err := json.Marshal(spec)
	if err != nil {
		return datasets.Summary{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("datasets"), bytes.NewReader(reqBody),
	)
	if err != nil {
		return datasets.Summary{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return datasets.Summary{}, err
	}
	defer resp.Body.Close()

	var summary datasets.Summary
	if err := unmarshalJsonResponse(
		resp, &summary,
		MessageFor{
			Status4xx: fmt.Sprintf("dataset %q is rejected by server", spec.Name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return datasets.Summary{}, err
	}
	return summary, nil
}

func (c *client) ListDatasetFiles(ctx context.Context, datasetId string) ([]datasets.FileEntry, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("datasets", datasetId, "files"), nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list datasets.FileList
	if err := unmarshalJsonResponse(
		resp, &list,
		MessageFor{
			Status4xx: fmt.Sprintf("datasetId:%v is not found", datasetId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}
	return list.Files, nil
}

func (c *client) GetFileRaw(
	ctx context.Context, datasetId string, path string, handler func(io.Reader) error,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.apipath("datasets", datasetId, "files", url.PathEscape(path)), nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot get file %s of datasetId:%v", path, datasetId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		resp.Body.Close()
		return err
	}
	defer r.Close()

	return handler(r)
}
