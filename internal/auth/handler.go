package auth

import (
	"net/http"

	"github.com/frahmantamala/teamchat/internal/core/account"
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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Info("authentication failed", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	acc, err := h.CurrentAccount(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MeResponse{User: acc.ToProfile()})
}

// AuthMiddleware resolves the bearer token to an active account and stores it on the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		acc, err := h.Service.Verify(r.Context(), token)
		if err != nil {
			logger.From(r.Context()).Info("token rejected", "error", err)
			h.HandleServiceError(w, r, err)
			return
		}

		ctx := account.WithContext(r.Context(), acc)
		ctx = logger.With(ctx, "actor_id", acc.ID, "company_id", acc.CompanyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
