// Package capture turns a camera feed into a single decoded barcode.
package capture

import (
	"context"
	"errors"
	"image"
)

var (
	ErrCameraUnavailable = errors.New("camera unavailable")
	ErrDecodeUnsupported = errors.New("barcode decoding unsupported")
	ErrAlreadyCapturing  = errors.New("capture already running")

	// ErrStreamEnded is returned by a Stream that has no more frames
	ErrStreamEnded = errors.New("stream ended")
	// ErrBadFrame marks a single unreadable frame; sampling continues
	ErrBadFrame = errors.New("unreadable frame")
	// ErrNoBarcode is returned by a Decoder when a frame holds no readable code
	ErrNoBarcode = errors.New("no barcode in frame")
)

// Facing selects which camera a device should open
type Facing int

const (
	FacingEnvironment Facing = iota
	FacingUser
)

// Camera grants exclusive access to a video source
type Camera interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// Stream yields frames until closed. Close may be called concurrently with
// Frame and must make a blocked Frame return.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// Decoder reads one barcode out of a frame
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// State of a capture session
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateDetected
)

func (s State) String() string {
	switch s {
	case StateCapturing:
		return "capturing"
	case StateDetected:
		return "detected"
	default:
		return "idle"
	}
}
