package resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(data any) Call {
	return func(context.Context) (*Response, error) {
		return &Response{Data: data}, nil
	}
}

func TestRootWrappingTransformer(t *testing.T) {
	c := definePeople(t, &stubTransport{})

	assert.Equal(t, map[string]any{"person": map[string]any{"id": 1}},
		RootWrappingTransformer(map[string]any{"id": 1}, c))
	assert.Equal(t, map[string]any{"people": []any{1, 2}},
		RootWrappingTransformer([]any{1, 2}, c))
	assert.Equal(t, map[string]any{"people": []map[string]any{}},
		RootWrappingTransformer([]map[string]any{}, c))
	assert.Equal(t, map[string]any{"person": nil}, RootWrappingTransformer(nil, c))
}

func TestRootWrappingInterceptor(t *testing.T) {
	c := definePeople(t, &stubTransport{})

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"singular", map[string]any{"person": map[string]any{"id": 1}}, map[string]any{"id": 1}},
		{"plural", map[string]any{"people": []any{1}}, []any{1}},
		{"singular wins", map[string]any{"person": 1, "people": 2}, 1},
		{"unwraps once", map[string]any{"person": map[string]any{"person": 3}}, map[string]any{"person": 3}},
		{"no root", map[string]any{"id": 1}, map[string]any{"id": 1}},
		{"not an object", []any{1}, []any{1}},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := RootWrappingInterceptor(respond(tt.in), c)(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Data)
		})
	}
}

func TestFieldRenamingStages(t *testing.T) {
	in := map[string]any{"firstName": "Ana", "tags": []any{map[string]any{"tagName": "x"}}}

	out := FieldRenamingTransformer(in, nil)
	assert.Equal(t, map[string]any{"first_name": "Ana", "tags": []any{map[string]any{"tag_name": "x"}}}, out)
	assert.Contains(t, in, "firstName", "input must not be modified")

	resp, err := FieldRenamingInterceptor(respond(out), nil)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, in, resp.Data)
}

func TestThen_SkipsOnError(t *testing.T) {
	boom := assert.AnError
	called := false
	call := Then(func(context.Context) (*Response, error) { return nil, boom }, func(r *Response) (*Response, error) {
		called = true
		return r, nil
	})

	_, err := call(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestDefaultContainer(t *testing.T) {
	c := DefaultContainer()
	assert.Equal(t, []string{
		StageFieldRenamingInterceptor,
		StageFieldRenamingTransformer,
		StageRootWrappingInterceptor,
		StageRootWrappingTransformer,
	}, c.Keys())

	v, err := c.Resolve(StageRootWrappingTransformer)
	require.NoError(t, err)
	assert.IsType(t, RequestTransformer(nil), v)

	v, err = c.Resolve(StageRootWrappingInterceptor)
	require.NoError(t, err)
	assert.IsType(t, ResponseInterceptor(nil), v)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "railsRootWrappingTransformer", Named(StageRootWrappingTransformer).String())
	assert.Equal(t, "inline(func() string)", Inline(func() string { return "" }).String())
	assert.Equal(t, "transformer", Transformer(FieldRenamingTransformer).String())
	assert.Equal(t, "interceptor", Interceptor(FieldRenamingInterceptor).String())
	assert.Equal(t, "invalid", Stage{}.String())
	assert.Nil(t, NamedStages(nil))
	assert.Equal(t, []Stage{Named("a")}, NamedStages([]string{"a"}))
}
