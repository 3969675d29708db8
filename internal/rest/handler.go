package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/config"
	"github.com/s21platform/group-chat-service/internal/media"
	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/pkg/apperr"
)

const maxUploadBytes = 100<<20 + 1<<20

type Handler struct {
	chat         ChatService
	media        MediaIntake
	jwtGenerator JWTGenerator
	stats        SessionStats
	queue        QueueDepth
	errorRate    ErrorRate
	now          func() time.Time
}

func New(
	chat ChatService,
	intake MediaIntake,
	jwtGenerator JWTGenerator,
	stats SessionStats,
	queue QueueDepth,
	errorRate ErrorRate,
) *Handler {
	return &Handler{
		chat:         chat,
		media:        intake,
		jwtGenerator: jwtGenerator,
		stats:        stats,
		queue:        queue,
		errorRate:    errorRate,
		now:          time.Now,
	}
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request, roomID string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SendMessage")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to get sender ID")
		h.writeError(w, "failed to get sender ID", http.StatusInternalServerError)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = model.TextMessageType
	}

	msg, duplicate, err := h.chat.Send(r.Context(), actor, model.SendInput{
		RoomID:          roomID,
		ThreadID:        req.ThreadID,
		ClientMessageID: req.ClientMessageID,
		Type:            req.Type,
		Body:            req.Body,
		MediaIDs:        req.MediaIDs,
		Mentions:        req.Mentions,
	})
	if err != nil {
		h.writeAppError(w, logger, "failed to send message", err)
		return
	}

	status := http.StatusCreated
	if duplicate {
		status = http.StatusOK
	}
	h.writeJSON(w, SendMessageResponse{Message: *msg, Duplicate: duplicate}, status)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request, roomID string, params GetMessagesParams) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetMessages")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	q := model.HistoryQuery{RoomID: roomID, ThreadID: params.ThreadID}
	if params.Cursor != nil {
		q.Cursor = *params.Cursor
	}
	if params.Limit != nil {
		q.Limit = *params.Limit
	}

	page, err := h.chat.History(r.Context(), actor, q)
	if err != nil {
		h.writeAppError(w, logger, "failed to fetch messages", err)
		return
	}

	h.writeJSON(w, page, http.StatusOK)
}

func (h *Handler) SearchMessages(w http.ResponseWriter, r *http.Request, roomID string, params SearchMessagesParams) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SearchMessages")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	q := model.SearchQuery{RoomID: roomID, Text: params.Q}
	if params.Cursor != nil {
		q.Cursor = *params.Cursor
	}
	if params.Limit != nil {
		q.Limit = *params.Limit
	}

	page, err := h.chat.Search(r.Context(), actor, q)
	if err != nil {
		h.writeAppError(w, logger, "failed to search messages", err)
		return
	}

	h.writeJSON(w, page, http.StatusOK)
}

func (h *Handler) GetPinnedMessages(w http.ResponseWriter, r *http.Request, roomID string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetPinnedMessages")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	msgs, err := h.chat.PinnedList(r.Context(), actor, roomID)
	if err != nil {
		h.writeAppError(w, logger, "failed to fetch pinned messages", err)
		return
	}
	if msgs == nil {
		msgs = model.MessageList{}
	}

	h.writeJSON(w, PinnedMessagesResponse{Messages: msgs}, http.StatusOK)
}

func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request, roomID string, messageID uuid.UUID) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetMessage")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	msg, err := h.chat.Get(r.Context(), actor, roomID, messageID)
	if err != nil {
		h.writeAppError(w, logger, "failed to fetch message", err)
		return
	}

	h.writeJSON(w, msg, http.StatusOK)
}

func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request, roomID string, messageID uuid.UUID) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("EditMessage")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.chat.Edit(r.Context(), actor, roomID, messageID, model.EditInput{Body: req.Body, Mentions: req.Mentions})
	if err != nil {
		h.writeAppError(w, logger, "failed to edit message", err)
		return
	}

	h.writeJSON(w, msg, http.StatusOK)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request, roomID string, messageID uuid.UUID) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("DeleteMessage")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	msg, err := h.chat.Delete(r.Context(), actor, roomID, messageID)
	if err != nil {
		h.writeAppError(w, logger, "failed to delete message", err)
		return
	}

	h.writeJSON(w, msg, http.StatusOK)
}

func (h *Handler) ReactToMessage(w http.ResponseWriter, r *http.Request, roomID string, messageID uuid.UUID) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("ReactToMessage")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	var req ReactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ev, err := h.chat.React(r.Context(), actor, roomID, messageID, req.Kind)
	if err != nil {
		h.writeAppError(w, logger, "failed to react to message", err)
		return
	}

	h.writeJSON(w, ev, http.StatusOK)
}

func (h *Handler) PinMessage(w http.ResponseWriter, r *http.Request, roomID string, messageID uuid.UUID) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("PinMessage")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	msg, err := h.chat.Pin(r.Context(), actor, roomID, messageID)
	if err != nil {
		h.writeAppError(w, logger, "failed to pin message", err)
		return
	}

	h.writeJSON(w, msg, http.StatusOK)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request, roomID string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("MarkRead")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.chat.MarkRead(r.Context(), actor, roomID, req.MessageID); err != nil {
		h.writeAppError(w, logger, "failed to mark read", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("UploadMedia")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "file is too large", http.StatusRequestEntityTooLarge)
			return
		}
		logger.Error(fmt.Sprintf("failed to read multipart file: %v", err))
		h.writeError(w, "multipart field \"file\" is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ref, err := h.media.Stage(r.Context(), actor.UserID, media.File{
		Name:         header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Body:         file,
	})
	if err != nil {
		h.writeAppError(w, logger, "failed to stage media", err)
		return
	}

	h.writeJSON(w, ref, http.StatusCreated)
}

func (h *Handler) GetConnectToken(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetConnectToken")

	actor, ok := actorOf(r)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := h.jwtGenerator.GenerateConnectToken(actor)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to generate connect token: %v", err))
		h.writeError(w, "failed to generate connect token", http.StatusInternalServerError)
		return
	}

	logger.Info(fmt.Sprintf("generated connect token for user %s", actor.UserID))

	h.writeJSON(w, ConnectTokenResponse{Token: token, ExpiresAt: expiresAt}, http.StatusOK)
}

// Health reports live load. A failing queue count degrades the status but
// still answers with what is known.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.stats.Stats()
	resp := HealthResponse{
		Status:      "ok",
		Connections: stats.Connections,
		Users:       stats.Users,
		Rooms:       stats.Rooms,
		ErrorRate:   h.errorRate.ErrorRate(),
		CheckedAt:   h.now().UTC(),
	}

	depth, err := h.queue.Depth(r.Context())
	if err != nil {
		resp.Status = "degraded"
	}
	resp.QueueDepth = depth

	h.writeJSON(w, resp, http.StatusOK)
}

// ----------------------------- helpers -----------------------------

func actorOf(r *http.Request) (model.Identity, bool) {
	userID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok || userID == "" {
		return model.Identity{}, false
	}
	premium, _ := r.Context().Value(config.KeyPremium).(bool)
	return model.Identity{UserID: userID, Premium: premium}, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Error{Error: message})
}

// writeAppError maps a classified failure onto its HTTP status. Only server
// side failures are logged as errors.
func (h *Handler) writeAppError(w http.ResponseWriter, logger logger_lib.LoggerInterface, msg string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fmt.Sprintf("%s: %v", msg, err))
	}
	if retryAfter := apperr.RetryAfterOf(err); retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Error{
		Error: apperr.PublicMessage(err),
		Code:  string(apperr.KindOf(err)),
	})
}
