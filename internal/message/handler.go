package message

import (
	"net/http"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/metrics"
	"github.com/frahmantamala/teamchat/internal/transport"
	"github.com/frahmantamala/teamchat/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Metrics *metrics.Metrics
}

func NewHandler(svc ServiceAPI, m *metrics.Metrics) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
		Metrics:     m,
	}
}

// fail counts group denials under the REST action before writing the error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if appErr, ok := errors.IsAppError(err); ok &&
		(appErr.Type == errors.ErrorTypeForbidden || appErr.Is(errors.ErrGroupNotFound)) {
		h.Metrics.AccessDenied(action)
	}
	h.HandleServiceError(w, r, err)
}

// History handles GET /messages/group/{groupId}?page=&limit=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentAccount(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	groupID, err := h.ParseIDParam(r, "groupId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	page := h.QueryInt(r, "page", 1)
	limit := h.QueryInt(r, "limit", DefaultPageSize)

	resp, err := h.Service.History(r.Context(), actor, groupID, page, limit)
	if err != nil {
		h.fail(w, r, "rest_history", err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Send handles POST /messages, the REST fallback for send_message.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentAccount(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto SendMessageDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Send(r.Context(), actor, dto.GroupID, dto.Content)
	if err != nil {
		h.fail(w, r, "rest_send", err)
		return
	}
	h.Metrics.MessageSent("rest")
	h.WriteJSON(w, http.StatusCreated, MessageEnvelope{Message: *resp})
}

// Delete handles DELETE /messages/{messageId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentAccount(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.ParseIDParam(r, "messageId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DeleteResponse{Message: "Message deleted."})
}
