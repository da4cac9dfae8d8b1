package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/forgeml/matforge-api-types/misc/rfctime"
	"github.com/forgeml/matforge-api-types/views"
)

func (c *client) GetDataView(ctx context.Context, viewId string) (views.Detail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("views", viewId), nil)
	if err != nil {
		return views.Detail{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return views.Detail{}, err
	}
	defer resp.Body.Close()

	var detail views.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("viewId:%v is not found", viewId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return views.Detail{}, err
	}
	return detail, nil
}

func (c *client) FindDataViews(ctx context.Context, query FindViewParameter) ([]views.Summary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("views"), nil)
	if err != nil {
		return nil, err
	}

	// set query values
	q := req.URL.Query()
	if query.Name != "" {
		q.Add("name", query.Name)
	}
	if len(query.DatasetIds) > 0 {
		q.Add("dataset", strings.Join(query.DatasetIds, ","))
	}
	if query.CreatedSince != nil {
		q.Add("since", query.CreatedSince.Format(rfctime.RFC3339DateTimeFormatZ))
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	found := make([]views.Summary, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("[BUG] client is not compatible with the server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}

	return found, nil
}

func (c *client) Retrain(ctx context.Context, viewId string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("views", viewId, "retrain"), nil,
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
			Status4xx: fmt.Sprintf("viewId:%v cannot be retrained", viewId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return err
	}

	return nil
}

func (c *client) ServiceStatus(ctx context.Context, viewId string) (views.ServiceStatus, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("views", viewId, "status"), nil,
	)
	if err != nil {
		return views.ServiceStatus{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return views.ServiceStatus{}, err
	}
	defer resp.Body.Close()

	var status views.ServiceStatus
	if err := unmarshalJsonResponse(
		resp, &status,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot get status of viewId:%v", viewId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return views.ServiceStatus{}, err
	}
	return status, nil
}
