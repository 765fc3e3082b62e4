package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"clonekit/internal/config"
	"clonekit/internal/logging"
	"clonekit/internal/timing"
	"clonekit/internal/value"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	watchFiles   bool
	outputFormat string
)

// slowClone is the DeepClone duration above which a run is logged as slow.
const slowClone = 250 * time.Millisecond

// cloneCmd deep-clones YAML documents
var cloneCmd = &cobra.Command{
	Use:   "clone FILE...",
	Short: "Decode, deep-clone and print YAML documents",
	Long: `Decodes each FILE into a value graph, deep-clones it and prints the clone.

Anchors and aliases in the input are shared references; the clone keeps the
same sharing and the same cycles. With clone.verify set, the clone is
compared with its source before it is printed.

Files are cloned in parallel (clone.workers); output follows argument order.

Example:
  clonekit clone service.yaml
  clonekit clone --format json a.yaml b.yaml
  clonekit clone --watch service.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClone,
}

// cloneResult is the outcome of cloning one file.
type cloneResult struct {
	path   string
	census value.Census
	out    []byte
}

func runClone(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	format := outputFormat
	if format == "" {
		format = cfg.Clone.Format
	}

	if err := cloneAll(ctx, cmd.OutOrStdout(), args, format); err != nil {
		return err
	}
	if !watchFiles {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchAndClone(ctx, cmd.OutOrStdout(), args, format)
}

// cloneAll clones paths concurrently and writes the results in order.
func cloneAll(ctx context.Context, w io.Writer, paths []string, format string) error {
	timer := logging.StartTimer(logging.CategoryClone, "cloneAll")
	defer timer.Stop()

	results := make([]*cloneResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Clone.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := cloneFile(path, format, cfg.Clone.Verify)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		if len(results) > 1 && format == "yaml" {
			fmt.Fprintf(w, "--- # %s\n", r.path)
		}
		if _, err := w.Write(r.out); err != nil {
			return err
		}
		logger.Debug("cloned",
			zap.String("path", r.path),
			zap.Int("composites", r.census.Composites),
			zap.Int("shared", r.census.Shared))
	}
	return nil
}

// cloneFile decodes one file, clones it and renders the clone.
func cloneFile(path, format string, verify bool) (*cloneResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	src, err := value.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	audit := logging.AuditFor(logging.CategoryClone)
	timer := logging.StartTimer(logging.CategoryClone, "DeepClone "+path)
	dup := value.DeepClone(src)
	elapsed := timer.StopWithThreshold(slowClone)
	audit.PerfMetric("DeepClone "+path, elapsed.Milliseconds(), slowClone.Milliseconds())

	if verify && !value.Equal(src, dup) {
		logging.Get(logging.CategoryClone).Error("Clone of %s differs from its source", path)
		err := fmt.Errorf("%s: clone differs from source", path)
		audit.CloneRun(path, 0, 0, elapsed.Milliseconds(), err)
		return nil, err
	}

	out, err := render(dup, format)
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
		audit.CloneRun(path, 0, 0, elapsed.Milliseconds(), err)
		return nil, err
	}
	census := value.Count(dup)
	audit.CloneRun(path, census.Composites, census.Shared, elapsed.Milliseconds(), nil)
	logging.Clone("Cloned %s: %d composites, %d shared", path, census.Composites, census.Shared)
	return &cloneResult{path: path, census: census, out: out}, nil
}

func render(v value.Value, format string) ([]byte, error) {
	switch format {
	case "yaml", "":
		return value.Encode(v)
	case "json":
		plain, err := value.Export(v)
		if err != nil {
			return nil, err
		}
		b, err := json.MarshalIndent(plain, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(b, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// watchAndClone re-clones each file when it changes until ctx is done.
func watchAndClone(ctx context.Context, w io.Writer, paths []string, format string) error {
	var (
		mu       sync.Mutex
		reclones int
	)
	progress := timing.Throttle(func() {
		mu.Lock()
		n := reclones
		mu.Unlock()
		logger.Info("watch progress", zap.Int("reclones", n))
	}, cfg.GetThrottle())
	defer progress.Stop()

	watcher, err := config.NewWatcher(cfg.GetDebounce(), func(path string) {
		r, err := cloneFile(path, format, cfg.Clone.Verify)
		if err != nil {
			logger.Warn("re-clone failed", zap.String("path", path), zap.Error(err))
			return
		}
		mu.Lock()
		reclones++
		fmt.Fprintf(w, "--- # %s\n", r.path)
		_, _ = w.Write(r.out)
		mu.Unlock()
		progress.Call()
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			return err
		}
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	logger.Info("watching for changes", zap.Strings("files", paths))

	<-ctx.Done()
	stats := watcher.Stats()
	logger.Info("watch stopped",
		zap.Int("events", stats.Events),
		zap.Int("notifications", stats.Notifications))
	return nil
}
