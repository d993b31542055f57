package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingBeforeInitIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		Info(context.Background(), "before init")
		Error(nil, "nil context") //nolint:staticcheck
	})
}

func TestInitAndContextLogging(t *testing.T) {
	Init("development")
	assert.NotNil(t, GetLogger())

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	assert.NotNil(t, WithContext(ctx))

	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/health", 200, 10*time.Millisecond, "127.0.0.1")
}

func TestWithContextAddsRequestAndReferenceFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	orig := log
	t.Cleanup(func() { log = orig })
	log = zap.New(core)

	ctx := context.WithValue(context.Background(), RequestIDKey, "typed-req-id")
	ctx = WithReference(ctx, "ref-123")
	Info(ctx, "settled")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "typed-req-id", fields["request_id"])
		assert.Equal(t, "ref-123", fields["reference_id"])
	}
}

func TestInit_Production(t *testing.T) {
	orig := log
	t.Cleanup(func() {
		log = orig
		once = sync.Once{}
	})
	once = sync.Once{}

	Init("production")
	assert.NotNil(t, GetLogger())
	assert.NotNil(t, WithContext(context.Background()))
}
