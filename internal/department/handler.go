package department

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

	var dto CreateDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, DepartmentEnvelope{Department: *resp})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentAccount(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	departments, err := h.Service.List(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{Departments: departments})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.CurrentAccount(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.ParseIDParam(r, "departmentId")
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
	id, err := h.ParseIDParam(r, "departmentId")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DepartmentEnvelope{Department: *resp})
}
