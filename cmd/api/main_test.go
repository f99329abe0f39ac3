// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubCloser struct {
	closed int
	err    error
}

func (s *stubCloser) Close() error {
	s.closed++
	return s.err
}

func TestCloseLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ok := &stubCloser{}
	closeLogged(logger, "database", ok)
	assert.Equal(t, 1, ok.closed)
	assert.Empty(t, buf.String())

	failing := &stubCloser{err: errors.New("pool busy")}
	closeLogged(logger, "redis", failing)
	assert.Equal(t, 1, failing.closed)
	assert.Contains(t, buf.String(), "redis close error")
	assert.Contains(t, buf.String(), "pool busy")
}
