package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/forgeml/matforge-api-types/predictions"
)

func (c *client) Predict(
	ctx context.Context, viewId string, preq predictions.Request,
) (predictions.Result, error) {
	reqBody, err := json.Marshal(preq)
	if err != nil {
		return predictions.Result{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("views", viewId, "predict"), bytes.NewReader(reqBody),
	)
	if err != nil {
		return predictions.Result{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return predictions.Result{}, err
	}
	defer resp.Body.Close()

	var result predictions.Result
	if err := unmarshalJsonResponse(
		resp, &result,
		MessageFor{
			Status4xx: fmt.Sprintf("prediction on viewId:%v is rejected by server", viewId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return predictions.Result{}, err
	}
	return result, nil
}
