package delivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"remindkit/internal/session"
	"remindkit/internal/speech"
)

// VoiceHandler accepts transcripts captured on the device and turns them
// into tasks.
type VoiceHandler struct {
	voiceUsecase speech.VoiceUsecase
	recognizer   speech.Recognizer
}

// NewVoiceHandler creates a new VoiceHandler
func NewVoiceHandler(voiceUsecase speech.VoiceUsecase, recognizer speech.Recognizer) *VoiceHandler {
	return &VoiceHandler{
		voiceUsecase: voiceUsecase,
		recognizer:   recognizer,
	}
}

// CreateFromTranscript creates a task from a voice transcript
// POST /api/voice/transcript
func (h *VoiceHandler) CreateFromTranscript(c *gin.Context) {
	var transcript speech.Transcript
	if err := c.ShouldBindJSON(&transcript); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.createFromTranscript(c, transcript)
}

// CaptureAndCreate listens for one utterance through the attached
// recognizer and turns the transcript into a task
// POST /api/voice/capture
func (h *VoiceHandler) CaptureAndCreate(c *gin.Context) {
	transcript, err := h.recognizer.StartListening(c.Request.Context())
	if err != nil {
		if errors.Is(err, speech.ErrRecognizerUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.createFromTranscript(c, transcript)
}

func (h *VoiceHandler) createFromTranscript(c *gin.Context, transcript speech.Transcript) {
	sess := session.FromContext(c)

	task, err := h.voiceUsecase.CreateFromTranscript(sess, transcript)
	if err != nil {
		if errors.Is(err, speech.ErrLowConfidence) || errors.Is(err, speech.ErrEmptyTranscript) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}
