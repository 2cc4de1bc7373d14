package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"ERROR":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContext_WithoutLogger ensures a bare context never yields nil.
func TestFromContext_WithoutLogger(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))
	Info(context.Background(), "dropped")
}

// TestContextHelpers checks that names and fields attached to the context reach the core.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithName(ctx, "updater")
	ctx = WithKV(ctx, "run_id", "abc")

	SuccessKV(ctx, "Step done", "step", "refresh")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "updater", entries[0].LoggerName)

	fields := entries[0].ContextMap()
	require.Equal(t, "abc", fields["run_id"])
	require.Equal(t, "refresh", fields["step"])
	require.Equal(t, "success", fields["status"])
}

// TestNewWithFile_AppendsLines writes through the file tee twice and expects both lines.
func TestNewWithFile_AppendsLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "updater.log")

	for _, message := range []string{"first run", "second run"} {
		l, closeFile, err := NewWithFile(zapcore.InfoLevel, path)
		require.NoError(t, err)

		l.Info(message)
		_ = l.Sync()

		closeFile()
	}

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "first run")
	require.Contains(t, string(contents), "second run")
	require.Contains(t, string(contents), "INFO")
}

// TestWithLevel_OverridesCoreLevel ensures the debug override lets debug lines through.
func TestWithLevel_OverridesCoreLevel(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core, WithLevel(zapcore.DebugLevel)).Sugar()

	l.Debug("visible")
	require.Equal(t, 1, logs.Len())
}

// TestSuccessKV_KeepsCallerSlice leaves spare capacity of the caller's pairs untouched.
func TestSuccessKV_KeepsCallerSlice(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	backing := make([]any, 2, 4)
	backing[0], backing[1] = "package", "radiantwave"

	SuccessKV(ctx, "Upgrade installed", backing...)

	require.Nil(t, backing[:4][2])
	require.Nil(t, backing[:4][3])

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "success", entries[0].ContextMap()["status"])
	require.Equal(t, "radiantwave", entries[0].ContextMap()["package"])
}
