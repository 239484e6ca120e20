package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lager/internal/barcode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Option configures a Session
type Option func(*Session)

// WithFrameInterval waits d between frames that held no barcode
func WithFrameInterval(d time.Duration) Option {
	return func(s *Session) {
		s.interval = d
	}
}

// Session samples frames from a camera until the first barcode is decoded.
// Each Start begins a new scan that emits at most one value.
type Session struct {
	camera   Camera
	decoder  Decoder
	logger   *zap.Logger
	interval time.Duration

	mu     sync.Mutex
	state  State
	id     uuid.UUID
	stream Stream
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates an idle capture session
func NewSession(camera Camera, decoder Decoder, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		camera:  camera,
		decoder: decoder,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current session state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start acquires the environment-facing camera and begins sampling. The
// returned channel yields the decoded barcode once and is then closed; it is
// closed without a value when the scan is stopped or the stream ends.
func (s *Session) Start(ctx context.Context) (<-chan string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCapturing {
		return nil, ErrAlreadyCapturing
	}
	if s.decoder == nil {
		return nil, ErrDecodeUnsupported
	}
	if s.camera == nil {
		return nil, ErrCameraUnavailable
	}

	stream, err := s.camera.Open(ctx, FacingEnvironment)
	if err != nil {
		s.state = StateIdle
		if errors.Is(err, ErrCameraUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	out := make(chan string, 1)
	done := make(chan struct{})

	s.id = uuid.New()
	s.state = StateCapturing
	s.stream = stream
	s.cancel = cancel
	s.done = done

	s.logger.Info("Capture started", zap.String("session_id", s.id.String()))

	go s.run(runCtx, s.id, stream, out, done)
	return out, nil
}

// Stop cancels sampling and releases the camera before returning. It is
// safe to call repeatedly and before Start.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.releaseLocked()
	if s.state != StateIdle {
		s.logger.Info("Capture stopped", zap.String("session_id", s.id.String()))
	}
	s.state = StateIdle
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (s *Session) run(ctx context.Context, id uuid.UUID, stream Stream, out chan<- string, done chan<- struct{}) {
	defer close(done)
	defer close(out)

	logger := s.logger.With(zap.String("session_id", id.String()))

	for {
		if ctx.Err() != nil {
			s.finish(id, StateIdle)
			return
		}

		frame, err := stream.Frame(ctx)
		if errors.Is(err, ErrBadFrame) && ctx.Err() == nil {
			logger.Debug("Skipping unreadable frame", zap.Error(err))
			continue
		}
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case errors.Is(err, ErrStreamEnded):
				logger.Info("Capture stream ended without a barcode")
			default:
				logger.Warn("Capture stream failed", zap.Error(err))
			}
			s.finish(id, StateIdle)
			return
		}

		code, err := s.decoder.Decode(frame)
		if err == nil {
			code = barcode.Normalize(code)
		}
		if err != nil || code == "" {
			if !errors.Is(err, ErrNoBarcode) && err != nil {
				logger.Debug("Frame decode failed", zap.Error(err))
			}
			if !sleep(ctx, s.interval) {
				s.finish(id, StateIdle)
				return
			}
			continue
		}

		if !s.finish(id, StateDetected) {
			return
		}
		logger.Info("Barcode detected", zap.String("barcode", code))
		out <- code
		return
	}
}

// finish releases the camera and moves to state, unless the session has
// already been stopped or restarted. It reports whether it did so.
func (s *Session) finish(id uuid.UUID, state State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != id || s.state != StateCapturing {
		return false
	}
	s.releaseLocked()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = state
	return true
}

func (s *Session) releaseLocked() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Close(); err != nil {
		s.logger.Warn("Failed to release camera", zap.Error(err))
	}
	s.stream = nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
