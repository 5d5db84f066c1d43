package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLoggerReceivesFields(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := WithContext(context.Background(), &l)

	LogError(ctx, errors.New("insert failed"), "booking submission failed", "property_id", "p-1", "guests", 2, "dangling")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "insert failed", entry["error"])
	assert.Equal(t, "p-1", entry["property_id"])
	assert.EqualValues(t, 2, entry["guests"])
	assert.NotContains(t, entry, "dangling")
}

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: LogLevelWarn, Environment: "production", Service: "staynest-api", Output: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.DebugLevel) })

	LogInfo(context.Background(), "dropped")
	LogWarn(context.Background(), "kept", "key", "draft:1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "staynest-api", entry["service"])
	assert.Equal(t, "draft:1", entry["key"])
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := WithContext(context.Background(), &l)

	assert.Equal(t, "unknown", RequestID(ctx))

	ctx = WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))

	LogInfo(ctx, "draft updated")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
}
