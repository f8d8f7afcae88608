package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter("api", LevelDebug, &buf)

	lgr.Info("order_created", "Order created", "req-1", map[string]interface{}{"order_no": 7})

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "api", entry.Service)
	assert.Equal(t, "order_created", entry.Action)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.EqualValues(t, 7, entry.Details["order_no"])
	assert.Nil(t, entry.Error)
}

func TestLoggerDropsEntriesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter("api", "info", &buf)

	lgr.Debug("noise", "ignored", "", nil)
	assert.Zero(t, buf.Len())

	lgr.Warn("publish_failed", "kept", "", nil)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestLoggerErrorCarriesMessageAndStack(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter("api", LevelDebug, &buf)

	lgr.Error("db_failed", "Query failed", "", nil, errors.New("boom"))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.NotNil(t, entry.Error)
	assert.Equal(t, "boom", entry.Error.Msg)
	assert.True(t, strings.Contains(entry.Error.Stack, "goroutine"))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}
