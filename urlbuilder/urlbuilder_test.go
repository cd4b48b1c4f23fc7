package urlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   map[string]any
		want     string
	}{
		{"member", "/people/{{id}}", map[string]any{"id": 5}, "/people/5"},
		{"collection", "/people/{{id}}", map[string]any{}, "/people"},
		{"nil params", "/people/{{id}}", nil, "/people"},
		{"suffix appended", "/people", map[string]any{"id": 7}, "/people/7"},
		{"suffix appended collection", "/people", map[string]any{}, "/people"},
		{"nested", "/owners/{{ownerId}}/pets/{{id}}", map[string]any{"ownerId": 3}, "/owners/3/pets"},
		{"only one slash stripped", "/people//{{id}}", map[string]any{}, "/people/"},
		{"absolute url", "http://api.example.com/people/{{id}}", map[string]any{"id": "x"}, "http://api.example.com/people/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := Build(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fn(tt.params))
		})
	}
}

func TestBuild_InvalidTemplate(t *testing.T) {
	_, err := Build("/people/{{id[}}")
	assert.Error(t, err)
	assert.Panics(t, func() { MustBuild("/people/{{id[}}") })
}

func TestFromFunc(t *testing.T) {
	calls := 0
	fn := FromFunc(func(params map[string]any) string {
		calls++
		return "/custom/"
	})

	assert.Equal(t, "/custom/", fn(nil))
	assert.Equal(t, 1, calls)
}
