package rest

import (
	"errors"
	"net/http"

	"github.com/GrandZah/Learning-Matan/internal/entity"
)

// eventRequest is the wire shape of a normalized inbound event.
type eventRequest struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Kind     string `json:"kind"`
	Success  bool   `json:"success,omitempty"`
}

func (r *eventRequest) toEntity() entity.Event {
	return entity.Event{
		UserID:   r.UserID,
		Username: r.Username,
		Kind:     entity.EventKind(r.Kind),
		Success:  r.Success,
	}
}

type cardPromptResponse struct {
	ID       int64    `json:"id"`
	ImageRef string   `json:"image_ref"`
	Actions  []string `json:"actions"`
}

type replyResponse struct {
	Kind    string              `json:"kind"`
	Card    *cardPromptResponse `json:"card,omitempty"`
	Success *bool               `json:"success,omitempty"`
	Text    string              `json:"text,omitempty"`
}

func toReplyResponse(reply *entity.Reply) *replyResponse {
	resp := &replyResponse{
		Kind: string(reply.Kind),
		Text: reply.Text,
	}
	if reply.Card != nil {
		resp.Card = &cardPromptResponse{
			ID:       reply.Card.CardID,
			ImageRef: reply.Card.ImageRef,
			Actions:  reply.Card.Actions,
		}
	}
	if reply.Kind == entity.ReplyGradeAccepted {
		success := reply.Success
		resp.Success = &success
	}
	return resp
}

type statsResponse struct {
	UserID        int64         `json:"user_id"`
	CountsByLevel map[int]int64 `json:"counts_by_level"`
	TotalAssigned int64         `json:"total_assigned"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, entity.ErrCardNotFound),
		errors.Is(err, entity.ErrProgressNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidUserID),
		errors.Is(err, entity.ErrInvalidImageRef),
		errors.Is(err, entity.ErrUnknownEvent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorBody resolves the status and client-facing message for an error.
// Unmapped errors surface storage internals, so the 500 branch returns a
// generic message; the handler logs the cause.
func errorBody(err error) (int, string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		return status, "internal error"
	}
	return status, err.Error()
}
