package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atollkit/atoll/internal/view"
)

func TestMarshalPropsBasic(t *testing.T) {
	tests := []struct {
		name     string
		props    view.Props
		expected string
	}{
		{"empty", view.Props{}, "{}"},
		{"string", view.Props{"name": "Ada"}, `{"name":"Ada"}`},
		{"int", view.Props{"count": 42}, `{"count":42}`},
		{"bool", view.Props{"show": true}, `{"show":true}`},
		{"null", view.Props{"extra": nil}, `{"extra":null}`},
		{"array", view.Props{"items": []any{"a", "b"}}, `{"items":["a","b"]}`},
		{"nested", view.Props{"user": map[string]any{"id": 1}}, `{"user":{"id":1}}`},
		{"integer float", view.Props{"n": float64(7)}, `{"n":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := MarshalProps(tt.props)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(b))
		})
	}
}

func TestMarshalPropsSortedKeys(t *testing.T) {
	b, err := MarshalProps(view.Props{"zebra": 1, "alpha": 2, "beta": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(b))
}

func TestMarshalPropsRejectsFloats(t *testing.T) {
	_, err := MarshalProps(view.Props{"ratio": 0.5})
	assert.Error(t, err)

	_, err = MarshalProps(view.Props{"nested": []any{1.5}})
	assert.Error(t, err)
}

func TestMarshalPropsRejectsUnsupportedTypes(t *testing.T) {
	_, err := MarshalProps(view.Props{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestMarshalPropsNoHTMLEscaping(t *testing.T) {
	b, err := MarshalProps(view.Props{"html": "<b>&</b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<b>&</b>"}`, string(b))
}

func TestMarshalPropsControlCharacters(t *testing.T) {
	b, err := MarshalProps(view.Props{"s": "a\nb\t\"c\""})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"a\nb\t\"c\""}`, string(b))
}

func TestMarshalPropsNFCNormalization(t *testing.T) {
	// e + combining acute normalizes to the precomposed form.
	decomposed := view.Props{"name": "café"}
	precomposed := view.Props{"name": "café"}

	a, err := MarshalProps(decomposed)
	require.NoError(t, err)
	b, err := MarshalProps(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestPropsHashDeterministic(t *testing.T) {
	p := view.Props{"b": 2, "a": 1}
	q := view.Props{"a": 1, "b": 2}

	h1, err := PropsHash(p)
	require.NoError(t, err)
	h2, err := PropsHash(q)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	h3, err := PropsHash(view.Props{"a": 1, "b": 3})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
