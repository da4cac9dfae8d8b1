package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/forgeml/matforge-api-types/tsne"
)

func (c *client) GetTsne(ctx context.Context, viewId string) (tsne.Tsne, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("views", viewId, "tsne"), nil,
	)
	if err != nil {
		return tsne.Tsne{}, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return tsne.Tsne{}, err
	}
	defer resp.Body.Close()

	var projections tsne.Tsne
	if err := unmarshalJsonResponse(
		resp, &projections,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot get t-SNE of viewId:%v (models may not be trained yet)", viewId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return tsne.Tsne{}, err
	}
	return projections, nil
}
