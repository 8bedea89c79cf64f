package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "json info", level: "info", format: "json"},
		{name: "text debug", level: "debug", format: "text"},
		{name: "upper case level", level: "WARN", format: "json"},
		{name: "bad level", level: "loud", format: "json", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewLogger(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := New(zap.New(core)).With("case_id", "CR2100001")

	log.Info("fetched case", "actions", 3)
	log.Warn("skipping link", "href", "/doc")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "fetched case", entries[0].Message)
	assert.Equal(t, "CR2100001", entries[0].ContextMap()["case_id"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["actions"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}
