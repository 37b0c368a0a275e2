package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   zapcore.Level
		wantOK bool
	}{
		{name: "debug", input: "debug", want: zapcore.DebugLevel, wantOK: true},
		{name: "upper case info", input: "INFO", want: zapcore.InfoLevel, wantOK: true},
		{name: "warning alias", input: "warning", want: zapcore.WarnLevel, wantOK: true},
		{name: "padded error", input: " error ", want: zapcore.ErrorLevel, wantOK: true},
		{name: "unknown", input: "verbose", want: zapcore.InfoLevel, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewNopDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		log := NewNop().Named("test")
		log.Info("hello", String("k", "v"), Int("n", 1), Bool("b", true))
		log.Warnf("formatted %d", 42)
		_ = log.Sync()
	})
}

func TestFromZapKeepsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).Named("favorites")

	log.Warn("failed to persist favorites", String("key", "rickandmorty_favorites"))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "favorites", entries[0].LoggerName)
		assert.Equal(t, "rickandmorty_favorites", entries[0].ContextMap()["key"])
	}
}
