package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forgeml/matforge-api-types/datasets"
	"github.com/forgeml/matforge-api-types/misc/rfctime"
	kprof "github.com/forgeml/matforge/cmd/forge/config/profiles"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/pkg/utils/try"
)

func TestCreateDataset(t *testing.T) {
	t.Run("it POSTs the spec and returns the registered dataset", func(t *testing.T) {
		expectedResponse := datasets.Summary{
			DatasetId:   "ds-1",
			Name:        "steel measurements",
			Description: "lab measurements of steel alloys",
			CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
				"2022-10-11T12:13:14.567+09:00",
			)).OrFatal(t),
		}

		var request *http.Request
		var requestBody datasets.Spec
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
				t.Fatal(err.Error())
			}

			w.Header().Add("Content-Type", "application/json")
			body, err := json.Marshal(expectedResponse)
			if err != nil {
				t.Fatal(err.Error())
			}
			w.WriteHeader(http.StatusOK)
			w.Write(body)
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := kprof.ForgeProfile{ApiRoot: server.URL, ApiKey: "test-api-key"}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		spec := datasets.Spec{
			Name:        "steel measurements",
			Description: "lab measurements of steel alloys",
		}
		actualResponse := try.To(testee.CreateDataset(context.Background(), spec)).OrFatal(t)
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual,expected): %v,%v", actualResponse, expectedResponse)
		}

		if request.Method != http.MethodPost {
			t.Errorf("request is not POST. actual method = %s", request.Method)
		}
		if !strings.HasSuffix(request.URL.Path, "/datasets") {
			t.Errorf("request is not datasets. actual path = %s", request.URL.Path)
		}
		if requestBody != spec {
			t.Errorf("sent spec is not equal (actual,expected): %v,%v", requestBody, spec)
		}
	})

	t.Run("when server responds with error, it returns error", func(t *testing.T) {
		handler := errorHandlerFactory(t, http.StatusConflict, "dataset name is taken")
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := kprof.ForgeProfile{ApiRoot: server.URL, ApiKey: "test-api-key"}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		if _, err := testee.CreateDataset(
			context.Background(), datasets.Spec{Name: "steel measurements"},
		); err == nil {
			t.Errorf("no error occured")
		}
	})
}

func TestListDatasetFiles(t *testing.T) {
	t.Run("when server returns files, it returns them as is", func(t *testing.T) {
		expectedFiles := []datasets.FileEntry{
			{
				Path: "alloys.csv",
				Size: 2048,
				UploadedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2022-10-11T12:13:14.567+09:00",
				)).OrFatal(t),
			},
			{
				Path: "notes.json",
				Size: 128,
				UploadedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2022-10-12T12:13:14.567+09:00",
				)).OrFatal(t),
			},
		}

		var request *http.Request
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			w.Header().Add("Content-Type", "application/json")
			body, err := json.Marshal(datasets.FileList{Files: expectedFiles})
			if err != nil {
				t.Fatal(err.Error())
			}
			w.WriteHeader(http.StatusOK)
			w.Write(body)
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := kprof.ForgeProfile{ApiRoot: server.URL, ApiKey: "test-api-key"}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		datasetId := "ds-1"
		actualFiles := try.To(testee.ListDatasetFiles(context.Background(), datasetId)).OrFatal(t)

		actual := datasets.FileList{Files: actualFiles}
		if !actual.Equal(datasets.FileList{Files: expectedFiles}) {
			t.Errorf("files are not equal (actual,expected): %v,%v", actualFiles, expectedFiles)
		}

		if !strings.HasSuffix(request.URL.Path, "/datasets/"+datasetId+"/files") {
			t.Errorf("request is not datasets/:datasetId/files. actual path = %s", request.URL.Path)
		}
	})
}

func TestUploadFile(t *testing.T) {
	t.Run("it streams the file and returns the registered entry", func(t *testing.T) {
		payload := strings.Repeat("formula,hardness\nFe2O3,5.2\n", 64)

		source := filepath.Join(t.TempDir(), "alloys.csv")
		if err := os.WriteFile(source, []byte(payload), 0o644); err != nil {
			t.Fatal(err)
		}

		var request *http.Request
		var received []byte
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			var err error
			received, err = io.ReadAll(r.Body)
			if err != nil {
				t.Fatal(err.Error())
			}

			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)

			entry := datasets.FileEntry{
				Path: r.URL.Query().Get("path"),
				Size: int64(len(received)),
				UploadedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2022-10-11T12:13:14.567+09:00",
				)).OrFatal(t),
			}
			body, err := json.Marshal(entry)
			if err != nil {
				t.Fatal(err.Error())
			}
			w.Write(body)
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := kprof.ForgeProfile{ApiRoot: server.URL, ApiKey: "test-api-key"}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		datasetId := "ds-1"
		prog := testee.UploadFile(context.Background(), datasetId, source)
		<-prog.Done()

		if err := prog.Error(); err != nil {
			t.Fatal(err)
		}

		select {
		case <-prog.Sent():
		default:
			t.Errorf("Sent() is not closed after Done()")
		}

		entry, ok := prog.Result()
		if !ok {
			t.Fatal("upload result is not available")
		}
		if entry.Path != "alloys.csv" {
			t.Errorf("registered path should be alloys.csv: %s", entry.Path)
		}
		if entry.Size != int64(len(payload)) {
			t.Errorf("registered size should be %d: %d", len(payload), entry.Size)
		}

		if string(received) != payload {
			t.Errorf("server did not receive the file content")
		}
		if request.Method != http.MethodPost {
			t.Errorf("request is not POST. actual method = %s", request.Method)
		}
		if !strings.HasSuffix(request.URL.Path, "/datasets/"+datasetId+"/files") {
			t.Errorf("request is not datasets/:datasetId/files. actual path = %s", request.URL.Path)
		}
		if ct := request.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type is not application/octet-stream. actual = %s", ct)
		}

		if prog.EstimatedTotalSize() != int64(len(payload)) {
			t.Errorf(
				"estimated total size should be %d: %d",
				len(payload), prog.EstimatedTotalSize(),
			)
		}
		if prog.ProgressedSize() != int64(len(payload)) {
			t.Errorf(
				"progressed size should be %d after Done(): %d",
				len(payload), prog.ProgressedSize(),
			)
		}
	})

	t.Run("when the source file does not exist, it reports error", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("server should not receive request")
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := kprof.ForgeProfile{ApiRoot: server.URL, ApiKey: "test-api-key"}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		prog := testee.UploadFile(
			context.Background(), "ds-1", filepath.Join(t.TempDir(), "no-such-file.csv"),
		)
		<-prog.Done()

		if prog.Error() == nil {
			t.Errorf("no error occured")
		}
		if _, ok := prog.Result(); ok {
			t.Errorf("result should not be available")
		}
	})

	t.Run("when server rejects the file, it reports error", func(t *testing.T) {
		source := filepath.Join(t.TempDir(), "alloys.csv")
		if err := os.WriteFile(source, []byte("formula\nFe2O3\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		handler := errorHandlerFactory(t, http.StatusBadRequest, "unsupported file format")
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := kprof.ForgeProfile{ApiRoot: server.URL, ApiKey: "test-api-key"}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		prog := testee.UploadFile(context.Background(), "ds-1", source)
		<-prog.Done()

		if prog.Error() == nil {
			t.Errorf("no error occured")
		}
	})
}

func TestGetFileRaw(t *testing.T) {
	t.Run("it streams the file content to the handler", func(t *testing.T) {
		payload := "formula,hardness\nFe2O3,5.2\n"

		var request *http.Request
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			w.Header().Add("Content-Type", "application/octet-stream")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(payload))
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := kprof.ForgeProfile{ApiRoot: server.URL, ApiKey: "test-api-key"}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		var actual []byte
		err := testee.GetFileRaw(
			context.Background(), "ds-1", "alloys.csv",
			func(r io.Reader) error {
				var err error
				actual, err = io.ReadAll(r)
				return err
			},
		)
		if err != nil {
			t.Fatal(err)
		}

		if string(actual) != payload {
			t.Errorf("downloaded content is not equal (actual,expected): %s,%s", actual, payload)
		}
		if !strings.HasSuffix(request.URL.Path, "/datasets/ds-1/files/alloys.csv") {
			t.Errorf(
				"request is not datasets/:datasetId/files/:path. actual path = %s",
				request.URL.Path,
			)
		}
	})

	t.Run("when handler returns error, it is passed through", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("content"))
		})
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := kprof.ForgeProfile{ApiRoot: server.URL, ApiKey: "test-api-key"}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		expectedErr := io.ErrUnexpectedEOF
		err := testee.GetFileRaw(
			context.Background(), "ds-1", "alloys.csv",
			func(r io.Reader) error { return expectedErr },
		)
		if err != expectedErr {
			t.Errorf("error is not passed through (actual,expected): %v,%v", err, expectedErr)
		}
	})

	t.Run("when server responds with error, it returns error", func(t *testing.T) {
		handler := errorHandlerFactory(t, http.StatusNotFound, "no such file")
		server := httptest.NewServer(handler)
		defer server.Close()

		profile := kprof.ForgeProfile{ApiRoot: server.URL, ApiKey: "test-api-key"}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		err := testee.GetFileRaw(
			context.Background(), "ds-1", "alloys.csv",
			func(r io.Reader) error {
				t.Error("handler should not be called")
				return nil
			},
		)
		if err == nil {
			t.Errorf("no error occured")
		}
	})
}
