// Package dictation manages the lifecycle of one continuous
// speech-to-text stream: transcript accumulation, silence-based
// auto-stop and transparent restart of the platform recognizer.
package dictation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/orcavozapp/orcavoz/internal/recognizer"
)

const silenceTickInterval = time.Second

// Session is either idle or recording. Results and timer ticks are
// serialized through the session mutex, so a result processed before a
// tick always resets the counter first. Start/Stop calls are expected to
// be serialized by the caller.
type Session struct {
	capture      recognizer.SpeechCapture
	language     string
	silenceTicks int
	onAutoStop   func()

	mu         sync.Mutex
	recording  bool
	stopping   bool
	transcript string
	silence    int
	cancelTick context.CancelFunc
	captureCtx context.Context
}

type Options struct {
	Language string
	// SilenceTimeoutTicks is the number of consecutive one-second ticks
	// without a final result before the session auto-stops.
	SilenceTimeoutTicks int
	// OnAutoStop, when set, is invoked after a silence auto-stop.
	OnAutoStop func()
}

func NewSession(capture recognizer.SpeechCapture, opts Options) *Session {
	ticks := opts.SilenceTimeoutTicks
	if ticks <= 0 {
		ticks = 8
	}
	return &Session{
		capture:      capture,
		language:     opts.Language,
		silenceTicks: ticks,
		onAutoStop:   opts.OnAutoStop,
	}
}

// Start transitions to recording and opens the capture stream. It does
// not clear the accumulated transcript; clearing belongs to the step
// transition, not to the recording toggle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.recording {
		s.mu.Unlock()
		return nil
	}
	s.recording = true
	s.stopping = false
	s.silence = 0
	s.captureCtx = ctx
	tickCtx, cancel := context.WithCancel(ctx)
	s.cancelTick = cancel
	s.mu.Unlock()

	if err := s.capture.Start(ctx, s.language, s); err != nil {
		s.mu.Lock()
		s.recording = false
		s.cancelTick = nil
		s.mu.Unlock()
		cancel()
		return err
	}
	go s.runSilenceTimer(tickCtx)
	slog.Info("dictation started", "language", s.language)
	return nil
}

// Stop transitions to idle, cancels the silence timer and stops the
// platform capture. Calling Stop on an idle session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return
	}
	s.stopLocked("stopped by caller")
	s.mu.Unlock()
}

// Recording reports whether the session is currently capturing.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Transcript returns the accumulated text.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// SetTranscript replaces the accumulated text; used for direct operator
// edits while not recording and for the step-transition reset.
func (s *Session) SetTranscript(text string) {
	s.mu.Lock()
	s.transcript = text
	s.mu.Unlock()
}

// WriteAudio forwards raw PCM to the capture while recording; audio
// arriving when idle is dropped.
func (s *Session) WriteAudio(pcm []byte) error {
	s.mu.Lock()
	recording := s.recording
	s.mu.Unlock()
	if !recording {
		return nil
	}
	return s.capture.WriteAudio(pcm)
}

// OnResult implements recognizer.Handler. Final results are appended,
// space-joined, and reset the silence counter; interim results are
// ignored.
func (s *Session) OnResult(text string, isFinal bool) {
	if !isFinal {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	if s.transcript == "" {
		s.transcript = text
	} else {
		s.transcript += " " + text
	}
	s.silence = 0
}

// OnEnd implements recognizer.Handler. The platform stream can end on
// its own while the session is still logically recording; restart it
// without touching the transcript unless Stop was requested. The
// restart runs under the session mutex so a concurrent Stop is ordered
// strictly before it (no restart happens) or strictly after it (the
// restarted capture is stopped); a Stop can never slip between the
// decision and the restart and leave an orphaned capture stream.
func (s *Session) OnEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording || s.stopping {
		return
	}
	slog.Warn("speech capture ended unexpectedly; restarting")
	if err := s.capture.Start(s.captureCtx, s.language, s); err != nil {
		slog.Error("failed to restart speech capture", "error", err)
	}
}

func (s *Session) runSilenceTimer(ctx context.Context) {
	ticker := time.NewTicker(silenceTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) tick() {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return
	}
	s.silence++
	if s.silence < s.silenceTicks {
		s.mu.Unlock()
		return
	}
	s.stopLocked("silence timeout")
	notify := s.onAutoStop
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

func (s *Session) stopLocked(reason string) {
	s.recording = false
	s.stopping = true
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	if err := s.capture.Stop(); err != nil {
		slog.Warn("failed to stop speech capture", "error", err, "reason", reason)
	}
	slog.Info("dictation stopped", "reason", reason)
}
