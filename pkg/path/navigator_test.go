package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *Path {
	t.Helper()
	p, err := Parse(s)
	require.NoError(t, err)
	return p
}

func TestNavigatorGet(t *testing.T) {
	root := map[string]any{
		"basics": map[string]any{"name": "Ada"},
		"work": []any{
			map[string]any{"company": "A", "tags": []string{"x", "y"}},
			map[string]any{"company": "B"},
		},
		"legacy":  map[any]any{"k": "v", 0: "zero"},
		"typed":   map[string]string{"lang": "go"},
		"nothing": nil,
	}
	nav := &Navigator{}

	tests := []struct {
		name string
		path string
		want any
	}{
		{name: "nested field", path: "[basics][name]", want: "Ada"},
		{name: "list index", path: "[work][1][company]", want: "B"},
		{name: "typed slice", path: "[work][0][tags][1]", want: "y"},
		{name: "any-keyed map", path: "[legacy][k]", want: "v"},
		{name: "any-keyed map int key", path: "[legacy][0]", want: "zero"},
		{name: "typed map", path: "[typed][lang]", want: "go"},
		{name: "nil value is readable", path: "[nothing]", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nav.Get(root, mustParse(t, tt.path))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, nav.IsReadable(root, mustParse(t, tt.path)))
		})
	}

	t.Run("empty path returns root", func(t *testing.T) {
		got, err := nav.Get(root, &Path{})
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})
}

func TestNavigatorGetErrors(t *testing.T) {
	root := map[string]any{
		"name": "Ada",
		"work": []any{"a"},
		"none": nil,
	}
	nav := &Navigator{}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing key", path: "[missing]", wantErr: ErrNotFound},
		{name: "index out of range", path: "[work][3]", wantErr: ErrNotFound},
		{name: "key on list", path: "[work][first]", wantErr: ErrNotFound},
		{name: "through scalar", path: "[name][first]", wantErr: ErrNotContainer},
		{name: "through nil", path: "[none][first]", wantErr: ErrNotContainer},
		{name: "wildcard", path: "[work][*]", wantErr: ErrWildcardSegment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := nav.Get(root, mustParse(t, tt.path))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, nav.IsReadable(root, mustParse(t, tt.path)))
		})
	}
}

func TestListLen(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int
		wantOK bool
	}{
		{name: "any slice", value: []any{1, 2, 3}, want: 3, wantOK: true},
		{name: "empty slice", value: []any{}, want: 0, wantOK: true},
		{name: "typed slice", value: []string{"a"}, want: 1, wantOK: true},
		{name: "array", value: [2]int{1, 2}, want: 2, wantOK: true},
		{name: "map", value: map[string]any{"0": "a"}, wantOK: false},
		{name: "scalar", value: "abc", wantOK: false},
		{name: "nil", value: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ListLen(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNavigatorSet(t *testing.T) {
	nav := &Navigator{}

	t.Run("creates maps and lists", func(t *testing.T) {
		var root any
		var err error
		root, err = nav.Set(root, mustParse(t, "[work][1][name]"), "B")
		require.NoError(t, err)
		root, err = nav.Set(root, mustParse(t, "[work][0][name]"), "A")
		require.NoError(t, err)
		root, err = nav.Set(root, mustParse(t, "[basics][name]"), "Ada")
		require.NoError(t, err)

		assert.Equal(t, map[string]any{
			"work": []any{
				map[string]any{"name": "A"},
				map[string]any{"name": "B"},
			},
			"basics": map[string]any{"name": "Ada"},
		}, root)
	})

	t.Run("root list from index", func(t *testing.T) {
		root, err := nav.Set(nil, mustParse(t, "[2]"), "c")
		require.NoError(t, err)
		assert.Equal(t, []any{nil, nil, "c"}, root)
	})

	t.Run("last write wins over scalar", func(t *testing.T) {
		root, err := nav.Set(nil, mustParse(t, "[a]"), "x")
		require.NoError(t, err)
		root, err = nav.Set(root, mustParse(t, "[a][b]"), "y")
		require.NoError(t, err)
		root, err = nav.Set(root, mustParse(t, "[a][b]"), "z")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": map[string]any{"b": "z"}}, root)
	})

	t.Run("key into list fails", func(t *testing.T) {
		root, err := nav.Set(nil, mustParse(t, "[a][0]"), "x")
		require.NoError(t, err)
		_, err = nav.Set(root, mustParse(t, "[a][b]"), "y")
		assert.ErrorIs(t, err, ErrContainerMismatch)
	})

	t.Run("wildcard fails", func(t *testing.T) {
		_, err := nav.Set(nil, mustParse(t, "[a][*]"), "x")
		assert.ErrorIs(t, err, ErrWildcardSegment)
	})

	t.Run("index over limit fails", func(t *testing.T) {
		for _, p := range []string{"[out][9223372036854775807]", "[out][1000000000000]", "[2000000]"} {
			_, err := nav.Set(nil, mustParse(t, p), "x")
			assert.ErrorIs(t, err, ErrIndexOutOfRange, p)
		}

		root, err := nav.Set([]any{"a"}, mustParse(t, "[1048577]"), "x")
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Nil(t, root)
	})

	t.Run("custom index limit", func(t *testing.T) {
		limited := &Navigator{MaxIndex: 2}
		root, err := limited.Set(nil, mustParse(t, "[a][2]"), "x")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": []any{nil, nil, "x"}}, root)

		_, err = limited.Set(root, mustParse(t, "[a][3]"), "y")
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}

func TestClone(t *testing.T) {
	src := map[string]any{"list": []any{map[string]any{"k": "v"}}}
	cp := Clone(src).(map[string]any)
	cp["list"].([]any)[0].(map[string]any)["k"] = "changed"
	assert.Equal(t, "v", src["list"].([]any)[0].(map[string]any)["k"])
}

func TestCloneNormalizesContainers(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{
			name:  "any-keyed map",
			value: map[any]any{"k": "v", 1: map[any]any{true: "yes"}},
			want:  map[string]any{"k": "v", "1": map[string]any{"true": "yes"}},
		},
		{
			name:  "typed map",
			value: map[string]string{"lang": "go"},
			want:  map[string]any{"lang": "go"},
		},
		{
			name:  "typed slice",
			value: []string{"x", "y"},
			want:  []any{"x", "y"},
		},
		{
			name:  "array of maps",
			value: [2]map[string]int{{"a": 1}, {"b": 2}},
			want:  []any{map[string]any{"a": 1}, map[string]any{"b": 2}},
		},
		{name: "bytes", value: []byte("hi"), want: []byte("hi")},
		{name: "scalar", value: 3.5, want: 3.5},
		{name: "nil", value: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clone(tt.value))
		})
	}
}

func TestSetMergesIntoClonedContainers(t *testing.T) {
	nav := &Navigator{}

	root, err := nav.Set(nil, mustParse(t, "[o]"), Clone(map[any]any{"k": "v"}))
	require.NoError(t, err)
	root, err = nav.Set(root, mustParse(t, "[o][z]"), "w")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"o": map[string]any{"k": "v", "z": "w"}}, root)

	root, err = nav.Set(nil, mustParse(t, "[tags]"), Clone([]string{"x"}))
	require.NoError(t, err)
	root, err = nav.Set(root, mustParse(t, "[tags][1]"), "y")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tags": []any{"x", "y"}}, root)
}
