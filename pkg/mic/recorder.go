// Package mic captures a bounded-duration voice clip from an exclusive
// microphone source.
package mic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultWindow is the fixed recording duration the product ships with.
const DefaultWindow = 4 * time.Second

// ErrBusy means a capture is already active; the second call is a no-op.
var ErrBusy = errors.New("mic: recording already in progress")

// DeviceError means the microphone could not be acquired or produced no
// audio.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("mic: %v", e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Clip is an assembled recording ready to be sent as a chat attachment.
type Clip struct {
	Name string
	MIME string
	Data []byte
}

// Source provides the raw audio stream. Open acquires the underlying device;
// the returned stream must be closed exactly once to release it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Recorder captures clips from a Source. Only one capture may be active at a
// time.
type Recorder struct {
	source Source
	window time.Duration
	logger zerolog.Logger

	mu     sync.Mutex
	active bool
	stop   context.CancelFunc
}

// NewRecorder creates a recorder with the given capture window. A
// non-positive window falls back to the default.
func NewRecorder(source Source, window time.Duration, logger zerolog.Logger) *Recorder {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Recorder{
		source: source,
		window: window,
		logger: logger.With().Str("component", "mic_recorder").Logger(),
	}
}

// Record acquires the microphone, accumulates audio until the window elapses
// or Stop is called, and assembles the buffered chunks into a clip. The
// device is released on every exit path. A second Record while one is active
// returns ErrBusy without touching the device.
func (r *Recorder) Record(ctx context.Context) (Clip, error) {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return Clip{}, ErrBusy
	}
	captureCtx, cancel := context.WithTimeout(ctx, r.window)
	r.active = true
	r.stop = cancel
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		r.active = false
		r.stop = nil
		r.mu.Unlock()
	}()

	stream, err := r.source.Open(captureCtx)
	if err != nil {
		return Clip{}, &DeviceError{Err: err}
	}

	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, copyErr := io.Copy(&buf, stream)
		done <- copyErr
	}()

	var readErr error
	drained := false
	select {
	case <-captureCtx.Done():
		// Window elapsed or Stop was called; closing the stream releases the
		// device and unblocks the reader.
	case readErr = <-done:
		// Source ended on its own.
		drained = true
	}
	closeErr := stream.Close()
	if !drained {
		readErr = <-done
	}

	if ctx.Err() != nil {
		return Clip{}, ctx.Err()
	}
	if closeErr != nil {
		r.logger.Debug().Err(closeErr).Msg("stream close reported an error")
	}

	if buf.Len() == 0 {
		if readErr != nil {
			return Clip{}, &DeviceError{Err: readErr}
		}
		return Clip{}, &DeviceError{Err: errors.New("no audio captured")}
	}

	data := buf.Bytes()
	mime := mimetype.Detect(data)
	ext := mime.Extension()
	if ext == "" {
		ext = ".bin"
	}

	clip := Clip{
		Name: "recording-" + uuid.NewString() + ext,
		MIME: mime.String(),
		Data: data,
	}
	r.logger.Info().Int("bytes", len(data)).Str("mime", clip.MIME).Msg("clip captured")
	return clip, nil
}

// Stop ends an active capture early. The pending Record call still returns
// the audio buffered so far.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		r.stop()
	}
}

// Recording reports whether a capture is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}
