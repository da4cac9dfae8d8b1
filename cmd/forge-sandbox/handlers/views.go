package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/forgeml/matforge-api-types/misc/rfctime"
	"github.com/forgeml/matforge-api-types/predictions"
	"github.com/forgeml/matforge/cmd/forge-sandbox/store"
	binderr "github.com/forgeml/matforge/pkg/api-binding/errors"
	kstrings "github.com/forgeml/matforge/pkg/utils/strings"
	"github.com/labstack/echo/v4"
)

func GetViewHandler(vs ViewStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		detail, err := vs.GetView(c.Param("viewId"))
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, detail)
	}
}

func FindViewsHandler(vs ViewStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		query := store.ViewQuery{
			Name:       c.QueryParam("name"),
			DatasetIds: kstrings.SplitIfNotEmpty(c.QueryParam("dataset"), ","),
		}
		if since := c.QueryParam("since"); since != "" {
			t, err := time.Parse(rfctime.RFC3339DateTimeFormatZ, since)
			if err != nil {
				return binderr.BadRequest(
					`query "since" should be a RFC3339 timestamp`, err,
				)
			}
			query.Since = &t
		}

		return c.JSON(http.StatusOK, vs.FindViews(query))
	}
}

func RetrainHandler(vs ViewStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := vs.Retrain(c.Param("viewId")); err != nil {
			return bindStoreError(err)
		}
		return c.NoContent(http.StatusAccepted)
	}
}

func ServiceStatusHandler(vs ViewStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, err := vs.ServiceStatus(c.Param("viewId"))
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, status)
	}
}

func TsneHandler(vs ViewStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		t, err := vs.Tsne(c.Param("viewId"))
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, t)
	}
}

func PredictHandler(vs ViewStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if strings.ToLower(req.Header.Get("content-type")) != "application/json" {
			return binderr.BadRequest(
				"unexpected content type. it should be application/json", nil,
			)
		}

		preq := new(predictions.Request)
		if err := json.NewDecoder(req.Body).Decode(preq); err != nil {
			return binderr.BadRequest("can not understand the requested json", err)
		}
		if _, err := predictions.AsMethod(string(preq.Method)); err != nil {
			return binderr.BadRequest(err.Error(), err)
		}

		result, err := vs.Predict(c.Param("viewId"), *preq)
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, result)
	}
}
