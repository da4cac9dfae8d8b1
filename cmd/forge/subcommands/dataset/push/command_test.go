package push_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forgeml/matforge-api-types/datasets"
	"github.com/forgeml/matforge/cmd/forge/env"
	krst "github.com/forgeml/matforge/cmd/forge/rest"
	"github.com/forgeml/matforge/cmd/forge/rest/mock"
	"github.com/forgeml/matforge/cmd/forge/subcommands/dataset/push"
	"github.com/forgeml/matforge/cmd/forge/subcommands/internal/commandline"
	"github.com/forgeml/matforge/cmd/forge/subcommands/logger"
	"github.com/youta-t/flarc"
)

type fakeProgress struct {
	total  int64
	file   string
	err    error
	result *datasets.FileEntry
	done   chan struct{}
	sentCh chan struct{}
}

func (p *fakeProgress) EstimatedTotalSize() int64 { return p.total }
func (p *fakeProgress) ProgressedSize() int64     { return p.total }
func (p *fakeProgress) ProgressingFile() string   { return p.file }
func (p *fakeProgress) Error() error              { return p.err }
func (p *fakeProgress) Done() <-chan struct{}     { return p.done }
func (p *fakeProgress) Sent() <-chan struct{}     { return p.sentCh }

func (p *fakeProgress) Result() (*datasets.FileEntry, bool) {
	return p.result, p.result != nil
}

var _ krst.Progress[*datasets.FileEntry] = &fakeProgress{}

func closedCh() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func sourceFile(t *testing.T) string {
	t.Helper()
	source := filepath.Join(t.TempDir(), "alloys.csv")
	content := "formula,hardness\nFe2O3,5.2\n"
	if err := os.WriteFile(source, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return source
}

func TestPushCommand(t *testing.T) {
	t.Run("it uploads the file and dumps the registered entry", func(t *testing.T) {
		source := sourceFile(t)

		client := mock.New(t)
		client.Impl.UploadFile = func(
			ctx context.Context, datasetId string, src string,
		) krst.Progress[*datasets.FileEntry] {
			if datasetId != "dataset-1" {
				t.Errorf("wrong dataset Id: %s", datasetId)
			}
			if src != source {
				t.Errorf("wrong source: %s", src)
			}
			return &fakeProgress{
				total: 28, file: src,
				result: &datasets.FileEntry{Path: "alloys.csv", Size: 28},
				done:   closedCh(),
				sentCh: closedCh(),
			}
		}

		stdout := new(strings.Builder)
		testee := push.Task(new(strings.Builder))

		err := testee(
			context.Background(), logger.Null(),
			*env.New(),
			client,
			commandline.MockCommandline[push.Flag]{
				Stdout_: stdout,
				Stderr_: new(strings.Builder),
				Flags_:  push.Flag{Dataset: "dataset-1"},
				Args_: map[string][]string{
					push.ARG_SOURCE: {source},
				},
			},
			[]any{},
		)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout.String(), "alloys.csv") {
			t.Errorf("the entry is not dumped: %s", stdout.String())
		}
	})

	t.Run("the upload error is reported even when the file is never read out", func(t *testing.T) {
		source := sourceFile(t)
		expectedErr := errors.New("fake error")

		client := mock.New(t)
		client.Impl.UploadFile = func(
			ctx context.Context, datasetId string, src string,
		) krst.Progress[*datasets.FileEntry] {
			// a connection failure stops the upload before reading the file:
			// Done is closed, Sent never will be.
			return &fakeProgress{
				file: src, err: expectedErr,
				done:   closedCh(),
				sentCh: make(chan struct{}),
			}
		}

		testee := push.Task(new(strings.Builder))

		result := make(chan error, 1)
		go func() {
			result <- testee(
				context.Background(), logger.Null(),
				*env.New(),
				client,
				commandline.MockCommandline[push.Flag]{
					Stdout_: new(strings.Builder),
					Stderr_: new(strings.Builder),
					Flags_:  push.Flag{Dataset: "dataset-1"},
					Args_: map[string][]string{
						push.ARG_SOURCE: {source},
					},
				},
				[]any{},
			)
		}()

		select {
		case err := <-result:
			if !errors.Is(err, expectedErr) {
				t.Errorf("wrong error: (actual, expected) = (%v, %v)", err, expectedErr)
			}
		case <-time.After(3 * time.Second):
			t.Fatal("push did not return after the upload failed")
		}
	})

	t.Run("without --dataset, it is a usage error", func(t *testing.T) {
		source := sourceFile(t)

		client := mock.New(t)

		testee := push.Task(new(strings.Builder))

		err := testee(
			context.Background(), logger.Null(),
			*env.New(),
			client,
			commandline.MockCommandline[push.Flag]{
				Stdout_: new(strings.Builder),
				Stderr_: new(strings.Builder),
				Flags_:  push.Flag{},
				Args_: map[string][]string{
					push.ARG_SOURCE: {source},
				},
			},
			[]any{},
		)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("wrong error: (actual, expected) = (%v, %v)", err, flarc.ErrUsage)
		}
	})
}
