package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/thanhldv/store-backoffice/internal/transport"
	"github.com/thanhldv/store-backoffice/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login handles POST /auth/login. All credential failures collapse into a
// single generic 401 so callers cannot probe which codes exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.Logger.Warn("login rejected", "code", dto.Code)
			h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			var vErr ValidationError
			if errors.As(err, &vErr) {
				h.WriteError(w, http.StatusBadRequest, vErr.Error())
			} else {
				h.Logger.Error("login failed", "error", err)
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, result.ToResponse())
}

// AuthMiddleware verifies the bearer token, then re-resolves the user's
// current role/permission graph so permission changes apply without a new
// login. Invalid, expired and malformed tokens all answer 401; the
// distinction is kept in the logs only.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token rejected", "reason", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		identity, err := h.Service.IdentityByCode(r.Context(), claims.Code)
		if err != nil {
			h.Logger.Error("identity resolution failed", "code", claims.Code, "error", err)
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if identity == nil {
			// Token is valid but the user was deleted since issuance.
			h.Logger.Warn("token for inactive user", "code", claims.Code)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
