// Package speech holds the contracts for the speech-to-text and
// text-to-speech collaborators. Both engines live outside this process;
// only their consumption surface is modeled here.
package speech

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"remindkit/pkg/config"
)

// Transcript is one recognition result
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognizer is the speech-to-text collaborator
type Recognizer interface {
	// StartListening blocks until a transcript is available or ctx ends
	StartListening(ctx context.Context) (Transcript, error)

	// StopListening aborts an in-progress capture
	StopListening()
}

// Speaker is the text-to-speech collaborator; Speak fires and returns
// without waiting for audio completion.
type Speaker interface {
	Speak(text string)
}

// ErrRecognizerUnavailable means no transcription engine is attached to
// this process; transcripts then arrive pre-captured from the device.
var ErrRecognizerUnavailable = errors.New("speech recognizer unavailable")

// NewRecognizer selects the recognizer configuration for the privacy mode.
// The engines themselves are external; either mode resolves to the engine
// bound at deploy time, or to the unavailable stub.
func NewRecognizer(privacyMode string) Recognizer {
	switch privacyMode {
	case config.SpeechPrivacyCloud:
		return unavailableRecognizer{mode: config.SpeechPrivacyCloud}
	default:
		return unavailableRecognizer{mode: config.SpeechPrivacyOnDevice}
	}
}

type unavailableRecognizer struct {
	mode string
}

func (unavailableRecognizer) StartListening(context.Context) (Transcript, error) {
	return Transcript{}, ErrRecognizerUnavailable
}

func (unavailableRecognizer) StopListening() {}

// LogSpeaker is a Speaker that writes announcements to the log; used when
// no audio engine is attached (tests, headless runs).
type LogSpeaker struct {
	log *logrus.Entry
}

// NewLogSpeaker creates a logging Speaker
func NewLogSpeaker(log *logrus.Logger) *LogSpeaker {
	return &LogSpeaker{log: log.WithField("component", "tts")}
}

func (s *LogSpeaker) Speak(text string) {
	s.log.Info("speak: " + text)
}
