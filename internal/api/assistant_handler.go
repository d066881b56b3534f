package api

import (
	"errors"
	"fitbuddy/app/internal/assistant"
	"fitbuddy/app/internal/domain"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const audioContentType = "audio/mpeg"

// AssistantHandler runs chat turns and owns each caller's speech player.
type AssistantHandler struct {
	orchestrator *assistant.Orchestrator
	entitlements assistant.EntitlementChecker
	players      *assistant.Players
}

// NewAssistantHandler wires the handler. A nil players disables speech.
func NewAssistantHandler(orchestrator *assistant.Orchestrator, entitlements assistant.EntitlementChecker, players *assistant.Players) *AssistantHandler {
	if entitlements == nil {
		entitlements = assistant.AlwaysEntitled
	}
	return &AssistantHandler{orchestrator: orchestrator, entitlements: entitlements, players: players}
}

// AssistantRequest carries the client-held history plus the new message.
// When Message is empty the last user entry of Messages is taken as the new turn.
type AssistantRequest struct {
	Messages []domain.ChatMessage `json:"messages" binding:"omitempty,dive"`
	Message  string               `json:"message"`
}

type AssistantResponse struct {
	Reply    string            `json:"reply"`
	Messages domain.Transcript `json:"messages"`
}

type SpeechRequest struct {
	Text string `json:"text" binding:"required"`
}

// splitTurn separates the history from the message to send.
func (r AssistantRequest) splitTurn() (domain.Transcript, string) {
	history := domain.Transcript(r.Messages)
	if r.Message != "" {
		return history, r.Message
	}
	if last, ok := history.Last(); ok && last.Role == domain.RoleUser {
		return history[:len(history)-1], last.Content
	}
	return history, ""
}

// Chat godoc
// @Summary Send one message to the AI coach
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body AssistantRequest true "History and new message"
// @Success 200 {object} AssistantResponse
// @Failure 400 {object} gin.H "Empty message"
// @Failure 403 {object} gin.H "Subscription required (code not_pro)"
// @Failure 502 {object} gin.H "Completion provider failure"
// @Router /assistant [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	var req AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	history, text := req.splitTurn()
	transcript, reply, err := h.orchestrator.SendTurn(c.Request.Context(), userID, history, text)
	if err != nil {
		abortWithDomainError(c, err, "Failed to reach the assistant")
		return
	}
	c.JSON(http.StatusOK, AssistantResponse{Reply: reply, Messages: transcript})
}

// Speak godoc
// @Summary Speak text through the caller's player
// @Description Stops anything the caller is already hearing, then streams the new audio.
// @Tags Assistant
// @Accept json
// @Produce audio/mpeg
// @Param request body SpeechRequest true "Text to speak; markup is stripped"
// @Success 200 {file} binary
// @Failure 409 {object} gin.H "Superseded by a newer request"
// @Failure 502 {object} gin.H "Speech synthesis failure"
// @Router /assistant/speech [post]
func (h *AssistantHandler) Speak(c *gin.Context) {
	player, userID, release, ok := h.playerFor(c)
	if !ok {
		return
	}
	defer release()
	var req SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	entitled, err := h.entitlements.Entitled(c.Request.Context(), userID)
	if err != nil {
		abortWithDomainError(c, err, "Failed to check subscription")
		return
	}
	if !entitled {
		abortWithDomainError(c, domain.ErrNotEntitled, "")
		return
	}

	pb, err := player.Play(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, assistant.ErrSuperseded) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		abortWithDomainError(c, err, "Failed to synthesize speech")
		return
	}
	defer pb.Close()

	c.DataFromReader(http.StatusOK, -1, audioContentType, pb, map[string]string{
		"Cache-Control": "no-store",
	})
	if pb.Released() {
		log.Printf("INFO: Speech for user %s was interrupted", userID)
	}
}

// StopSpeech godoc
// @Summary Stop the caller's playback
// @Tags Assistant
// @Success 204
// @Router /assistant/speech [delete]
func (h *AssistantHandler) StopSpeech(c *gin.Context) {
	player, _, release, ok := h.playerFor(c)
	if !ok {
		return
	}
	defer release()
	player.Stop()
	c.Status(http.StatusNoContent)
}

// SpeechState godoc
// @Summary Report whether speech is loading or playing
// @Tags Assistant
// @Produce json
// @Success 200 {object} assistant.PlayerState
// @Router /assistant/speech [get]
func (h *AssistantHandler) SpeechState(c *gin.Context) {
	player, _, release, ok := h.playerFor(c)
	if !ok {
		return
	}
	defer release()
	c.JSON(http.StatusOK, player.State())
}

// playerFor acquires the caller's player; release must be called when the
// request is done with it.
func (h *AssistantHandler) playerFor(c *gin.Context) (*assistant.Player, string, func(), bool) {
	if h.players == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Speech is not configured")
		return nil, "", nil, false
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return nil, "", nil, false
	}
	player, release := h.players.Acquire(userID)
	return player, userID, release, true
}
