package company

import (
	"net/http"

	"github.com/frahmantamala/teamchat/internal/transport"
	"github.com/frahmantamala/teamchat/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentAccount(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto CreateCompanyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, CompanyEnvelope{Company: *resp})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentAccount(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.ParseIDParam(r, "companyId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentAccount(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.ParseIDParam(r, "companyId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateCompanyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CompanyEnvelope{Company: *resp})
}
