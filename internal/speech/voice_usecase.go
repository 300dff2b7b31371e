package speech

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	syncdomain "remindkit/internal/sync/domain"
	taskdomain "remindkit/internal/task/domain"
	taskusecase "remindkit/internal/task/usecase"
)

var (
	ErrLowConfidence   = errors.New("transcript confidence below threshold")
	ErrEmptyTranscript = errors.New("transcript is empty")
)

// VoiceUsecase turns a captured transcript into a task
type VoiceUsecase interface {
	CreateFromTranscript(session syncdomain.Session, transcript Transcript) (*taskdomain.Task, error)
}

type voiceUsecase struct {
	tasks         taskusecase.TaskUsecase
	minConfidence float64
	log           *logrus.Entry
}

// NewVoiceUsecase creates the transcript-to-task flow. Transcripts below
// minConfidence are rejected rather than guessed at.
func NewVoiceUsecase(tasks taskusecase.TaskUsecase, minConfidence float64, log *logrus.Logger) VoiceUsecase {
	return &voiceUsecase{
		tasks:         tasks,
		minConfidence: minConfidence,
		log:           log.WithField("component", "voice"),
	}
}

func (u *voiceUsecase) CreateFromTranscript(session syncdomain.Session, transcript Transcript) (*taskdomain.Task, error) {
	title := strings.TrimSpace(transcript.Text)
	if title == "" {
		return nil, ErrEmptyTranscript
	}
	if transcript.Confidence < u.minConfidence {
		u.log.WithFields(logrus.Fields{
			"confidence": transcript.Confidence,
			"threshold":  u.minConfidence,
		}).Info("transcript rejected")
		return nil, ErrLowConfidence
	}

	return u.tasks.Create(session, taskusecase.CreateRequest{Title: title})
}
