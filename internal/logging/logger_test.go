package logging

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestLogger_RequestID(t *testing.T) {
	t.Run("uses request id from context", func(t *testing.T) {
		buf := captureLog(t)
		ctx := WithRequestID(context.Background(), "rid-42")

		NewLogger(ctx).LogInfof("create_project", "title=%s", "Draft")

		assert.Contains(t, buf.String(), "request_id=rid-42")
		assert.Contains(t, buf.String(), "operation=create_project title=Draft")
	})

	t.Run("falls back to dash without request id", func(t *testing.T) {
		buf := captureLog(t)

		NewLogger(context.Background()).LogError("migrate", errors.New("boom"))

		assert.Contains(t, buf.String(), "[error] request_id=- operation=migrate error=boom")
	})
}
