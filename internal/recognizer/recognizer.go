// Package recognizer defines the boundary to the platform speech
// recognizer. The platform runs in continuous mode, delivers interim and
// final results through the handler, and may end the underlying stream
// on its own (quota, max stream duration); OnEnd tells the owner so it
// can decide whether to restart.
package recognizer

import "context"

type Handler interface {
	OnResult(text string, isFinal bool)
	OnEnd()
}

type SpeechCapture interface {
	// Start opens a fresh recognition stream. Calling Start on a capture
	// whose previous stream ended is valid and opens a new one.
	Start(ctx context.Context, language string, h Handler) error
	// WriteAudio feeds raw PCM into the active stream.
	WriteAudio(pcm []byte) error
	Stop() error
}

// CaptureFactory builds one capture per dictation session.
type CaptureFactory func() SpeechCapture
