package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/forgeml/matforge-api-types/design"
	binderr "github.com/forgeml/matforge/pkg/api-binding/errors"
	"github.com/labstack/echo/v4"
)

func SubmitDesignHandler(ds DesignStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if strings.ToLower(req.Header.Get("content-type")) != "application/json" {
			return binderr.BadRequest(
				"unexpected content type. it should be application/json", nil,
			)
		}

		spec := new(design.Spec)
		if err := json.NewDecoder(req.Body).Decode(spec); err != nil {
			return binderr.BadRequest("can not understand the requested json", err)
		}

		run, err := ds.SubmitDesignRun(c.Param("viewId"), *spec)
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, run)
	}
}

func DesignStatusHandler(ds DesignStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, err := ds.DesignRunStatus(c.Param("viewId"), c.Param("runId"))
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, status)
	}
}

func DesignResultsHandler(ds DesignStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		results, err := ds.DesignRunResults(c.Param("viewId"), c.Param("runId"))
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, results)
	}
}

func KillDesignHandler(ds DesignStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := ds.KillDesignRun(c.Param("viewId"), c.Param("runId")); err != nil {
			return bindStoreError(err)
		}
		return c.NoContent(http.StatusOK)
	}
}
