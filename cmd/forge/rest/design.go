package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/forgeml/matforge-api-types/design"
)

func (c *client) SubmitDesignRun(
	ctx context.Context, viewId string, spec design.Spec,
) (design.Run, error) {
	if err := spec.Verify(); err != nil {
		return design.Run{}, err
	}

	reqBody, err := json.Marshal(spec)
	if err != nil {
		return design.Run{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("views", viewId, "design"), bytes.NewReader(reqBody),
	)
	if err != nil {
		return design.Run{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return design.Run{}, err
	}
	defer resp.Body.Close()

	var run design.Run
	if err := unmarshalJsonResponse(
		resp, &run,
		MessageFor{
			Status4xx: fmt.Sprintf("design run on viewId:%v is rejected by server", viewId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return design.Run{}, err
	}
	return run, nil
}

func (c *client) GetDesignRunStatus(
	ctx context.Context, viewId string, runId string,
) (design.ProcessStatus, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("views", viewId, "design", runId, "status"), nil,
	)
	if err != nil {
		return design.ProcessStatus{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return design.ProcessStatus{}, err
	}
	defer resp.Body.Close()

	var status design.ProcessStatus
	if err := unmarshalJsonResponse(
		resp, &status,
		MessageFor{
			Status4xx: fmt.Sprintf("design run runId:%v is not found", runId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return design.ProcessStatus{}, err
	}
	return status, nil
}

func (c *client) GetDesignRunResults(
	ctx context.Context, viewId string, runId string,
) (design.Results, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("views", viewId, "design", runId, "results"), nil,
	)
	if err != nil {
		return design.Results{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return design.Results{}, err
	}
	defer resp.Body.Close()

	var results design.Results
	if err := unmarshalJsonResponse(
		resp, &results,
		MessageFor{
			Status4xx: fmt.Sprintf("results of design run runId:%v are not available", runId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return design.Results{}, err
	}
	return results, nil
}

func (c *client) KillDesignRun(ctx context.Context, viewId string, runId string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.apipath("views", viewId, "design", runId, "kill"), nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("design run runId:%v cannot be killed", runId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return err
	}

	return nil
}
