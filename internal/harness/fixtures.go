package harness

import (
	"fmt"
	"strconv"

	"github.com/atollkit/atoll/internal/view"
)

// Components returns the fixture component registry shared by the server
// and client sides of a scenario run.
func Components() map[string]view.Factory {
	return map[string]view.Factory{
		"counter":   counterFactory,
		"greeting":  greetingFactory,
		"todo-list": todoListFactory,
		"banner":    bannerFactory,
		"profile":   profileFactory,
		"lazy-note": lazyNoteFactory,
	}
}

// DivergenceMode names the ways a scenario can make the client disagree
// with the delivered markup.
type DivergenceMode string

const (
	// DivergeWrongTag renders a different root tag than the server did.
	DivergeWrongTag DivergenceMode = "wrong-tag"

	// DivergeExtraItem renders one more list item than the server did.
	DivergeExtraItem DivergenceMode = "extra-item"

	// DivergeFewerItems renders one list item fewer than the server did.
	DivergeFewerItems DivergenceMode = "fewer-items"

	// DivergeTextDrift renders different text content. This one must NOT
	// mismatch: text drift is benign and the existing node is overwritten.
	DivergeTextDrift DivergenceMode = "text-drift"
)

// DivergentFactory returns a client-side variant of the named component
// that diverges from its server rendering in the given mode.
func DivergentFactory(name string, mode DivergenceMode) (view.Factory, error) {
	base, ok := Components()[name]
	if !ok {
		return nil, fmt.Errorf("no fixture component %q", name)
	}
	switch mode {
	case DivergeWrongTag:
		return func(svc *view.Service) view.Render {
			return func(b view.Builder, props view.Props) error {
				if _, err := b.EnterElement("section"); err != nil {
					return err
				}
				return b.ExitElement()
			}
		}, nil
	case DivergeExtraItem, DivergeFewerItems:
		return func(svc *view.Service) view.Render {
			return func(b view.Builder, props view.Props) error {
				items := propStrings(props, "items")
				if mode == DivergeExtraItem {
					items = append(items, "extra")
				} else if len(items) > 0 {
					items = items[:len(items)-1]
				}
				return renderTodoList(b, items)
			}
		}, nil
	case DivergeTextDrift:
		return func(svc *view.Service) view.Render {
			inner := base(svc)
			return func(b view.Builder, props view.Props) error {
				drifted := view.Props{}
				for k, v := range props {
					drifted[k] = v
				}
				if s, ok := drifted["name"].(string); ok {
					drifted["name"] = s + " (drifted)"
				}
				if n, ok := asInt(drifted["count"]); ok {
					drifted["count"] = n + 1
				}
				return inner(b, drifted)
			}
		}, nil
	default:
		return nil, fmt.Errorf("unknown divergence mode %q", mode)
	}
}

// counter is a single-button island with a click binding and one effect.
func counterFactory(svc *view.Service) view.Render {
	return func(b view.Builder, props view.Props) error {
		count, _ := asInt(props["count"])
		if _, err := b.EnterElement("button"); err != nil {
			return err
		}
		if err := b.Attr("class", "counter"); err != nil {
			return err
		}
		if err := b.Listen("click", func(any) {}); err != nil {
			return err
		}
		if err := b.Text(strconv.Itoa(count)); err != nil {
			return err
		}
		svc.Effect(func() {})
		return b.ExitElement()
	}
}

func greetingFactory(svc *view.Service) view.Render {
	return func(b view.Builder, props view.Props) error {
		name, _ := props["name"].(string)
		return view.Element(b, "span", "Hello, "+name)
	}
}

func todoListFactory(svc *view.Service) view.Render {
	return func(b view.Builder, props view.Props) error {
		return renderTodoList(b, propStrings(props, "items"))
	}
}

func renderTodoList(b view.Builder, items []string) error {
	if _, err := b.EnterElement("ul"); err != nil {
		return err
	}
	if err := view.List(b, len(items), func(i int) error {
		return view.Element(b, "li", items[i])
	}); err != nil {
		return err
	}
	return b.ExitElement()
}

// banner renders conditionally: when show is false it contributes nothing,
// markers included.
func bannerFactory(svc *view.Service) view.Render {
	return func(b view.Builder, props view.Props) error {
		show, _ := props["show"].(bool)
		text, _ := props["text"].(string)
		if _, err := b.EnterElement("div"); err != nil {
			return err
		}
		if err := b.Attr("class", "banner"); err != nil {
			return err
		}
		if err := view.If(b, show, func() error {
			return view.Element(b, "strong", text)
		}); err != nil {
			return err
		}
		return b.ExitElement()
	}
}

// profile is a multi-node (fragment) island: two sibling roots.
func profileFactory(svc *view.Service) view.Render {
	return func(b view.Builder, props view.Props) error {
		name, _ := props["name"].(string)
		bio, _ := props["bio"].(string)
		if err := view.Element(b, "h2", name); err != nil {
			return err
		}
		return view.Element(b, "p", bio)
	}
}

// lazy-note defers part of its content, exercising the skip/seek pass: the
// note body is declared deferred, a trailing sibling is matched first, and
// the body attaches during the unwind.
func lazyNoteFactory(svc *view.Service) view.Render {
	return func(b view.Builder, props view.Props) error {
		note, _ := props["note"].(string)
		if _, err := b.EnterElement("div"); err != nil {
			return err
		}
		if err := b.Defer(func(b view.Builder) error {
			return view.Element(b, "p", note)
		}); err != nil {
			return err
		}
		if err := view.Element(b, "span", "sig"); err != nil {
			return err
		}
		return b.ExitElement()
	}
}

func propStrings(props view.Props, key string) []string {
	raw, _ := props[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
