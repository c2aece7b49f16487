package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/atollkit/atoll/internal/harness"
	"github.com/atollkit/atoll/internal/render"
	"github.com/atollkit/atoll/internal/store"
	"github.com/atollkit/atoll/internal/view"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr  string
	Cache string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <scenario.yaml>",
		Short: "Serve a scenario's rendered page over HTTP",
		Long: `Serve a scenario's page, rendering it per request. Each request gets
its own render session; no registry state is shared across requests.

With --cache, rendered island fragments are cached in SQLite keyed by
component type and canonical props hash.

Example:
  atoll serve scenarios/counter.yaml --addr :8080
  atoll serve scenarios/counter.yaml --cache ./render.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "path to SQLite render cache (optional)")

	return cmd
}

func runServe(opts *ServeOptions, path string) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	scenario, err := harness.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenario", err)
	}

	var cache *store.Store
	if opts.Cache != "" {
		cache, err = store.Open(opts.Cache)
		if err != nil {
			return WrapExitError(ExitCommandError, "open render cache", err)
		}
		defer cache.Close()
		log.Info("render cache enabled", "path", opts.Cache)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		markup, err := renderCached(r.Context(), scenario, cache, log)
		if err != nil {
			log.Error("render failed", "err", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body>%s</body></html>",
			scenario.Name, markup)
	})

	log.Info("serving scenario", "scenario", scenario.Name, "addr", opts.Addr)
	return http.ListenAndServe(opts.Addr, mux)
}

// renderCached renders the scenario page, consulting the fragment cache for
// whole-page entries keyed by the scenario's page composition.
func renderCached(ctx context.Context, scenario *harness.Scenario, cache *store.Store, log *slog.Logger) (string, error) {
	if cache == nil {
		markup, _, err := harness.RenderPage(scenario)
		return markup, err
	}

	key, err := pageCacheKey(scenario)
	if err != nil {
		return "", err
	}
	if markup, ok, err := cache.Get(ctx, "page:"+scenario.Name, key); err != nil {
		return "", err
	} else if ok {
		log.Debug("render cache hit", "scenario", scenario.Name)
		return markup, nil
	}

	markup, _, err := harness.RenderPage(scenario)
	if err != nil {
		return "", err
	}
	session := render.NewSession()
	if err := cache.Put(ctx, "page:"+scenario.Name, key, markup, session.Token()); err != nil {
		return "", err
	}
	log.Debug("render cache fill", "scenario", scenario.Name)
	return markup, nil
}

// pageCacheKey hashes the page's component/props composition.
func pageCacheKey(scenario *harness.Scenario) (string, error) {
	composite := view.Props{}
	for i, item := range scenario.Page {
		composite[fmt.Sprintf("%d:%s:%s", i, item.Component, item.Island)] = map[string]any(item.Props)
	}
	return render.PropsHash(composite)
}
