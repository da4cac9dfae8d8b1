package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/forgeml/matforge-api-types/datasets"
	binderr "github.com/forgeml/matforge/pkg/api-binding/errors"
	"github.com/labstack/echo/v4"
)

func CreateDatasetHandler(ds DatasetStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if strings.ToLower(req.Header.Get("content-type")) != "application/json" {
			return binderr.BadRequest(
				"unexpected content type. it should be application/json", nil,
			)
		}

		spec := new(datasets.Spec)
		if err := json.NewDecoder(req.Body).Decode(spec); err != nil {
			return binderr.BadRequest("can not understand the requested json", err)
		}

		summary, err := ds.CreateDataset(*spec)
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, summary)
	}
}

func ListDatasetFilesHandler(ds DatasetStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		files, err := ds.ListDatasetFiles(c.Param("datasetId"))
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, datasets.FileList{Files: files})
	}
}

func UploadFileHandler(ds DatasetStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.QueryParam("path")
		if path == "" {
			return binderr.BadRequest(`query "path" is required`, nil)
		}

		req := c.Request()
		entry, err := ds.PutFile(c.Param("datasetId"), path, req.Body)
		if err != nil {
			return bindStoreError(err)
		}
		return c.JSON(http.StatusOK, entry)
	}
}

func DownloadFileHandler(ds DatasetStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		path, err := url.PathUnescape(c.Param("path"))
		if err != nil {
			return binderr.BadRequest("broken file path", err)
		}

		data, err := ds.GetFile(c.Param("datasetId"), path)
		if err != nil {
			return bindStoreError(err)
		}
		return c.Blob(http.StatusOK, "application/octet-stream", data)
	}
}
