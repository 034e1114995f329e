package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelValidation(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		l, err := New(Config{Level: level})
		require.NoError(t, err, "level %q", level)
		assert.NotNil(t, l)
	}

	_, err := New(Config{Level: "verbose"})
	assert.Error(t, err)
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "name", Value: "obi"}, String("name", "obi"))
	assert.Equal(t, Field{Key: "depth", Value: 2}, Int("depth", 2))
	assert.Equal(t, Field{Key: "pct", Value: 25.0}, Float64("pct", 25.0))
	assert.Equal(t, Field{Key: "identified", Value: true}, Bool("identified", true))
	assert.Equal(t, Field{Key: "elapsed", Value: time.Second}, Duration("elapsed", time.Second))
}

func TestErr_NilError(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Debug("debug")
	l.Info("info", String("k", "v"))
	l.Warn("warn", Int("n", 1))
	l.Error("error", Err(assert.AnError))
	l.With(Bool("child", true)).Named("sub").Info("nested")
}
