package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestDeclare_SetsDefault(t *testing.T) {
	t.Parallel()

	s := New()
	s.Declare("USE_VORBIS", cty.False)

	enabled, err := s.Bool("USE_VORBIS")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestDeclare_DuplicatePanics(t *testing.T) {
	t.Parallel()

	s := New()
	s.Declare("USE_OGG", cty.False)
	require.Panics(t, func() { s.Declare("USE_OGG", cty.True) })
}

func TestSet_UndeclaredKeyIsConfigError(t *testing.T) {
	t.Parallel()

	s := New()
	err := s.Set("NOT_DECLARED", cty.True)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "NOT_DECLARED", cfgErr.Key)
	assert.Equal(t, "write", cfgErr.Op)
}

func TestGet_UndeclaredKeyIsConfigError(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.Bool("NOT_DECLARED")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "read", cfgErr.Op)
}

func TestSet_ConvertsToDeclaredType(t *testing.T) {
	t.Parallel()

	s := New()
	s.Declare("USE_BZIP2", cty.False)
	require.NoError(t, s.Set("USE_BZIP2", cty.StringVal("true")))

	enabled, err := s.Bool("USE_BZIP2")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSet_IncompatibleTypeFails(t *testing.T) {
	t.Parallel()

	s := New()
	s.Declare("USE_ZLIB", cty.False)
	err := s.Set("USE_ZLIB", cty.StringVal("maybe"))
	require.Error(t, err)
}

func TestString(t *testing.T) {
	t.Parallel()

	s := New()
	s.Declare("TOOLCHAIN", cty.StringVal("cc"))
	require.NoError(t, s.Set("TOOLCHAIN", cty.StringVal("clang")))

	v, err := s.String("TOOLCHAIN")
	require.NoError(t, err)
	assert.Equal(t, "clang", v)
}

func TestApplyOverride(t *testing.T) {
	t.Parallel()

	s := New()
	s.Declare("USE_VORBIS", cty.False)
	s.Declare("USE_GIFLIB", cty.False)
	s.Declare("TOOLCHAIN", cty.StringVal("cc"))

	require.NoError(t, s.ApplyOverride("USE_VORBIS=1"))
	require.NoError(t, s.ApplyOverride("USE_GIFLIB=true"))
	require.NoError(t, s.ApplyOverride("TOOLCHAIN=clang"))

	vorbis, err := s.Bool("USE_VORBIS")
	require.NoError(t, err)
	assert.True(t, vorbis)

	giflib, err := s.Bool("USE_GIFLIB")
	require.NoError(t, err)
	assert.True(t, giflib)

	toolchain, err := s.String("TOOLCHAIN")
	require.NoError(t, err)
	assert.Equal(t, "clang", toolchain)
}

func TestApplyOverride_Malformed(t *testing.T) {
	t.Parallel()

	s := New()
	assert.Error(t, s.ApplyOverride("USE_VORBIS"))
	assert.Error(t, s.ApplyOverride("=1"))
}

func TestValues_ReturnsSnapshot(t *testing.T) {
	t.Parallel()

	s := New()
	s.Declare("USE_OGG", cty.False)

	snapshot := s.Values()
	require.NoError(t, s.Set("USE_OGG", cty.True))

	// The earlier snapshot must not observe later writes.
	assert.Equal(t, cty.False, snapshot["USE_OGG"])
	assert.Equal(t, cty.True, s.Values()["USE_OGG"])
}

func TestKeys_Sorted(t *testing.T) {
	t.Parallel()

	s := New()
	s.Declare("USE_ZLIB", cty.False)
	s.Declare("USE_BZIP2", cty.False)
	assert.Equal(t, []string{"USE_BZIP2", "USE_ZLIB"}, s.Keys())
}
