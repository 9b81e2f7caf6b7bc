package agent

import (
	"context"
	"io"
	"sync"
)

// deltaBuffer is the channel capacity between the producing workflow and the
// consuming reader. A full buffer blocks the producer, which gives natural
// backpressure.
const deltaBuffer = 32

// ResponseStream is a pull-based handle over a streaming workflow run.
// Recv returns deltas in order and io.EOF once the run finished; the
// concatenation of all deltas equals the final ResponseText. Close cancels
// the underlying run.
type ResponseStream struct {
	deltas chan string
	cancel context.CancelFunc

	done   chan struct{}
	result *QueryResult
	err    error

	closeOnce sync.Once
}

func newResponseStream(cancel context.CancelFunc) *ResponseStream {
	return &ResponseStream{
		deltas: make(chan string, deltaBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Recv blocks for the next delta. It returns io.EOF when the run produced
// its last delta, or the ctx error if the caller gives up waiting.
func (s *ResponseStream) Recv(ctx context.Context) (string, error) {
	select {
	case delta, ok := <-s.deltas:
		if !ok {
			return "", io.EOF
		}
		return delta, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Final blocks until the run finished and returns its result. After Recv
// returned io.EOF this returns immediately.
func (s *ResponseStream) Final(ctx context.Context) (*QueryResult, error) {
	select {
	case <-s.done:
		return s.result, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close cancels the underlying run and releases the stream. Safe to call
// more than once and after io.EOF.
func (s *ResponseStream) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

// emit forwards one delta to the reader, giving up when the run context is
// cancelled so an abandoned stream cannot block the workflow forever.
func (s *ResponseStream) emit(runCtx context.Context) EmitFunc {
	return func(delta string) {
		select {
		case s.deltas <- delta:
		case <-runCtx.Done():
		}
	}
}

// finish publishes the run outcome and wakes every pending Recv and Final.
func (s *ResponseStream) finish(result *QueryResult, err error) {
	s.result = result
	s.err = err
	close(s.deltas)
	close(s.done)
}
