package main

import (
	"context"
	"flag"
	"log"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/forgeml/matforge/cmd/forge-sandbox/handlers"
	"github.com/forgeml/matforge/cmd/forge-sandbox/store"
	"github.com/forgeml/matforge/pkg/utils/filewatch"
	kstrings "github.com/forgeml/matforge/pkg/utils/strings"
)

func main() {
	port := flag.String("port", "8080", "port to listen on")
	seedPath := flag.String("seed", "", "seed fixture file (YAML). empty serves a built-in demo seed")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	flag.Parse()

	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())

	setLogLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	seed := store.DefaultSeed()
	if *seedPath != "" {
		sd, err := store.LoadSeed(*seedPath)
		if err != nil {
			log.Fatalf("can not read seed file: %s", err)
		}
		seed = sd

		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *seedPath)
		if err != nil {
			log.Fatalf("can not watch seed file: %s", err)
		}
		defer cancel()
		context.AfterFunc(ctx, func() {
			log.Println("seed file is updated. quit to restart server.")
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				log.Printf("error on shutdown by seed file update: %s", err)
			}
		})
	}

	s, err := store.New(seed)
	if err != nil {
		log.Fatalf("broken seed: %s", err)
	}

	api := root("/api")

	{
		e.GET(api("views"), handlers.FindViewsHandler(s))
		e.GET(api("views/:viewId/"), handlers.GetViewHandler(s))
		e.POST(api("views/:viewId/retrain"), handlers.RetrainHandler(s))
		e.GET(api("views/:viewId/status"), handlers.ServiceStatusHandler(s))
		e.GET(api("views/:viewId/tsne"), handlers.TsneHandler(s))
		e.POST(api("views/:viewId/predict"), handlers.PredictHandler(s))
	}

	{
		e.POST(api("views/:viewId/design"), handlers.SubmitDesignHandler(s))
		e.GET(api("views/:viewId/design/:runId/status"), handlers.DesignStatusHandler(s))
		e.GET(api("views/:viewId/design/:runId/results"), handlers.DesignResultsHandler(s))
		e.PUT(api("views/:viewId/design/:runId/kill"), handlers.KillDesignHandler(s))
	}

	{
		e.POST(api("datasets"), handlers.CreateDatasetHandler(s))
		e.GET(api("datasets/:datasetId/files"), handlers.ListDatasetFilesHandler(s))
		e.POST(api("datasets/:datasetId/files"), handlers.UploadFileHandler(s))
		e.GET(api("datasets/:datasetId/files/:path"), handlers.DownloadFileHandler(s))
	}

	log.Println("registred routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	e.Logger.Fatal(e.Start(":" + *port))
}

func setLogLevel(e *echo.Echo, level string) {
	switch strings.ToLower(level) {
	case "debug":
		e.Logger.SetLevel(glog.DEBUG)
	case "warn":
		e.Logger.SetLevel(glog.WARN)
	case "error":
		e.Logger.SetLevel(glog.ERROR)
	case "off":
		e.Logger.SetLevel(glog.OFF)
	default:
		e.Logger.SetLevel(glog.INFO)
	}
}

// create api URL factory
//
// It receives a relative path from the api root, and returns the full,
// "/"-terminated route path.
func root(base string) func(...string) string {
	return func(s ...string) string {
		parts := make([]string, len(s)+1)
		parts[0] = base
		copy(parts[1:], s)
		return kstrings.SupplySuffix(path.Join(parts...), "/")
	}
}
