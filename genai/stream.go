package genai

import (
	"context"
	"io"
	"iter"
	"sync"
)

// StreamState is the lifecycle position of a GenerateContentStream.
type StreamState int

const (
	// StreamPending: nothing has been sent yet.
	StreamPending StreamState = iota
	// StreamEmitting: the request is in flight and chunks are being delivered.
	StreamEmitting
	// StreamCompleted: the server ended the stream and every chunk passed.
	StreamCompleted
	// StreamFailed: the call failed or a chunk failed checkResponse.
	StreamFailed
	// StreamClosed: the consumer stopped reading before the end.
	StreamClosed
)

func (s StreamState) String() string {
	switch s {
	case StreamPending:
		return "pending"
	case StreamEmitting:
		return "emitting"
	case StreamCompleted:
		return "completed"
	case StreamFailed:
		return "failed"
	case StreamClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// GenerateContentStream is a streamed generate call. It is read once, either
// by ranging over Iter or by calling Next until it returns an error. Each
// chunk passes the same checks as a buffered response; the first failing
// chunk ends the stream with its *GenerateContentError.
//
// A stream is not safe for concurrent use. Breaking out of Iter or calling
// Close releases the connection.
type GenerateContentStream struct {
	ctx    context.Context
	model  *GenerativeModel
	source iter.Seq2[*GenerateContentResponse, error]

	// onComplete receives the merged response after a successful end.
	onComplete func(*GenerateContentResponse)

	mu      sync.Mutex
	state   StreamState
	err     error
	started bool
	closed  bool
	chunks  []*GenerateContentResponse

	next func() (*GenerateContentResponse, error, bool)
	stop func()
}

func newGenerateContentStream(ctx context.Context, model *GenerativeModel, source iter.Seq2[*GenerateContentResponse, error]) *GenerateContentStream {
	return &GenerateContentStream{ctx: ctx, model: model, source: source}
}

// Iter returns the chunks as a range-over-func sequence. A failure is yielded
// once as the last element. Ranging a second time yields ErrStreamConsumed.
//
//	for chunk, err := range stream.Iter() {
//		if err != nil {
//			return err
//		}
//		fmt.Print(chunk.Text())
//	}
func (s *GenerateContentStream) Iter() iter.Seq2[*GenerateContentResponse, error] {
	return func(yield func(*GenerateContentResponse, error) bool) {
		if !s.begin() {
			yield(nil, ErrStreamConsumed)
			return
		}

		for chunk, err := range s.source {
			if err != nil {
				yield(nil, s.fail(internalError(err)))
				return
			}
			if err := checkResponse(chunk); err != nil {
				s.model.logRejected(s.ctx, err)
				yield(nil, s.fail(err))
				return
			}
			if s.isClosed() {
				s.finish(StreamClosed)
				return
			}
			s.record(chunk)
			if !yield(chunk, nil) || s.isClosed() {
				s.finish(StreamClosed)
				return
			}
		}
		s.complete()
	}
}

// Next returns the next chunk, io.EOF after the last one, and the terminal
// error once the stream has failed.
func (s *GenerateContentStream) Next() (*GenerateContentResponse, error) {
	if s.next == nil {
		if s.isStarted() {
			if err := s.Err(); err != nil {
				return nil, err
			}
			return nil, ErrStreamConsumed
		}
		s.next, s.stop = iter.Pull2(s.Iter())
	}

	chunk, err, ok := s.next()
	if !ok {
		if err := s.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return chunk, err
}

// Close abandons the stream and releases its connection. It may be called
// from the body of a range over Iter; no chunk is delivered after it.
// Closing a finished stream has no effect.
func (s *GenerateContentStream) Close() {
	s.mu.Lock()
	s.closed = true
	if !s.started {
		s.started = true
		s.state = StreamClosed
	}
	stop := s.stop
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// State returns the current state.
func (s *GenerateContentStream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that failed the stream, or nil.
func (s *GenerateContentStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Collect reads the whole stream and returns the response merged from all
// chunks along with the chunks themselves. On failure the chunks received
// before it are returned with the error.
func (s *GenerateContentStream) Collect() (*GenerateContentResponse, []*GenerateContentResponse, error) {
	var chunks []*GenerateContentResponse
	for chunk, err := range s.Iter() {
		if err != nil {
			return nil, chunks, err
		}
		chunks = append(chunks, chunk)
	}
	return mergeResponses(chunks), chunks, nil
}

func (s *GenerateContentStream) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return false
	}
	s.started = true
	s.state = StreamEmitting
	return true
}

func (s *GenerateContentStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *GenerateContentStream) isStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *GenerateContentStream) record(chunk *GenerateContentResponse) {
	if s.onComplete == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunk)
}

func (s *GenerateContentStream) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StreamFailed
	s.err = err
	s.chunks = nil
	return err
}

func (s *GenerateContentStream) finish(state StreamState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.chunks = nil
}

func (s *GenerateContentStream) complete() {
	s.mu.Lock()
	chunks := s.chunks
	s.state = StreamCompleted
	s.chunks = nil
	s.mu.Unlock()

	if s.onComplete != nil {
		s.onComplete(mergeResponses(chunks))
	}
}
