package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/atollkit/atoll/internal/dom"
	"github.com/atollkit/atoll/internal/hydrate"
	"github.com/atollkit/atoll/internal/render"
	"github.com/atollkit/atoll/internal/view"
)

// Result captures one scenario run.
type Result struct {
	// Markup is the serialized server output, markers and bootstrap
	// payload included.
	Markup string

	// Payload is the ordered marker list the server registered.
	Payload []view.Marker

	// Report is the client-side hydration report.
	Report *hydrate.Report
}

// Run executes a scenario end to end: server render, serialize, re-parse,
// hydrate. The render token is fixed so output is deterministic.
func Run(s *Scenario) (*Result, error) {
	markup, payload, err := RenderPage(s)
	if err != nil {
		return nil, err
	}

	report, err := HydratePage(s, markup)
	if err != nil {
		return nil, err
	}
	return &Result{Markup: markup, Payload: payload, Report: report}, nil
}

// RenderPage performs the scenario's server-side render and returns the
// serialized markup plus the registered markers.
func RenderPage(s *Scenario) (string, []view.Marker, error) {
	session := render.NewSession(render.WithTokenGenerator(render.FixedGenerator{Token: "render-" + s.Name}))
	container := dom.NewElement("div")
	b := session.Builder(container)

	components := Components()
	for i, item := range s.Page {
		factory := components[item.Component]
		renderFn := factory(view.NewLive())
		props := view.Props(item.Props)

		var err error
		if item.Island == "" {
			err = renderFn(b, props)
		} else {
			err = b.Island(item.Component, view.IslandKind(item.Island), props, renderFn)
		}
		if err != nil {
			return "", nil, fmt.Errorf("render page[%d] (%s): %w", i, item.Component, err)
		}
	}
	if err := session.Finalize(container); err != nil {
		return "", nil, err
	}

	markup, err := dom.RenderString(container)
	if err != nil {
		return "", nil, err
	}
	return markup, session.Markers(), nil
}

// HydratePage re-parses markup the way a delivered page is received and
// hydrates it with the scenario's client registry, divergences applied.
func HydratePage(s *Scenario, markup string) (*hydrate.Report, error) {
	container, err := dom.ParseFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("parse delivered markup: %w", err)
	}

	registry, err := ClientRegistry(s)
	if err != nil {
		return nil, err
	}
	orch := hydrate.New(registry, hydrate.WithLogger(quietLogger()))
	return orch.HydrateAll(container)
}

// ClientRegistry builds the hydration registry for a scenario, swapping in
// divergent component variants where the scenario asks for them.
func ClientRegistry(s *Scenario) (*hydrate.Registry, error) {
	registry := hydrate.NewRegistry()
	for name, factory := range Components() {
		registry.Register(name, factory)
	}
	for _, d := range s.Divergences {
		factory, err := DivergentFactory(d.Component, d.Mode)
		if err != nil {
			return nil, err
		}
		registry.Register(d.Component, factory)
	}
	return registry, nil
}

// quietLogger keeps expected-mismatch noise out of test output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
