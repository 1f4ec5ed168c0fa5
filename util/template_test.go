package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveTemplate(t *testing.T) {
	data := map[string]any{
		"title": "fix the gate",
		"order": map[string]any{"id": 42},
	}
	scenarios := map[string]struct {
		template string
		want     string
	}{
		"simple path":         {template: "work item {$.title} moved", want: "work item fix the gate moved"},
		"nested path":         {template: "order {$.order.id}", want: "order 42"},
		"missing path kept":   {template: "value {$.nope}", want: "value {$.nope}"},
		"non path token kept": {template: "hello {world}", want: "hello {world}"},
		"no tokens":           {template: "plain text", want: "plain text"},
		"repeated token":      {template: "{$.title} and {$.title}", want: "fix the gate and fix the gate"},
	}
	for name, scenario := range scenarios {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, scenario.want, ResolveTemplate(scenario.template, data))
		})
	}
}

func TestDistinct(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, Distinct([]string{"a", "b", "a", "c", "b"}))
	require.Empty(t, Distinct([]string{}))
}

func TestContains(t *testing.T) {
	require.True(t, Contains([]string{"a", "b"}, "b"))
	require.False(t, Contains([]string{"a", "b"}, "z"))
}
