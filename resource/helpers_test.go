package resource

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/railskit/transport"
)

// stubTransport answers every request with one canned response.
type stubTransport struct {
	mu       sync.Mutex
	requests []transport.Request
	status   int
	body     string
	err      error
}

func (s *stubTransport) Do(_ context.Context, req transport.Request) (*transport.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	status := s.status
	if status == 0 {
		status = 200
	}
	return &transport.Response{StatusCode: status, Body: []byte(s.body)}, nil
}

func (s *stubTransport) last(t *testing.T) transport.Request {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests, "no request was sent")
	return s.requests[len(s.requests)-1]
}

func definePeople(t *testing.T, tr transport.Transport, mutate ...func(*Config)) *Class {
	t.Helper()
	cfg := Config{Name: "person", URL: "/people/{{id}}"}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewFactory(tr).Define(cfg)
	require.NoError(t, err)
	return c
}
