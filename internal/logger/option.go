package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// levelOverride replaces the level check of the wrapped core.
// Sinks built by New and NewWithFile keep their own level; the override wins.
type levelOverride struct {
	zapcore.Core

	level zapcore.Level
}

// Enabled reports whether l passes the override level.
func (c *levelOverride) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l)
}

// Check adds the core to ce when the entry level passes the override.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *levelOverride) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// With keeps the override on derived cores.
//
//nolint:ireturn,nolintlint // Returning zapcore.Core is intended for zap integration.
func (c *levelOverride) With(fields []zapcore.Field) zapcore.Core {
	return &levelOverride{
		Core:  c.Core.With(fields),
		level: c.level,
	}
}

// WithLevel returns an option forcing every core of the logger to lvl.
// The CLI uses it for --debug, which must win over the configured level.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithLevel(lvl zapcore.Level) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &levelOverride{Core: core, level: lvl}
	})
}
