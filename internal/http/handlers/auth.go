package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jforshea/authhub/internal/config"
	"github.com/jforshea/authhub/internal/domain/user"
	"github.com/jforshea/authhub/internal/http/middlewares"
	"github.com/jforshea/authhub/internal/observability"
	"github.com/jforshea/authhub/internal/service"
)

// AuthService is the slice of the authentication service the handlers
// need; tests plug in the real service over a memory store.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	UserByID(ctx context.Context, id int64) (user.User, error)
	SessionCookie(userID int64) (string, error)
	LogoutCookie() string
}

type AuthHandler struct {
	svc  AuthService
	prom *observability.Prom
}

func NewAuthHandler(svc AuthService, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{svc: svc, prom: prom}
}

type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Password  string `json:"password" binding:"required,min=6,password"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) countAuth(op, result string) {
	if h.prom != nil {
		h.prom.AuthResults.WithLabelValues(op, result).Inc()
	}
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	created, err := h.svc.Register(cctx, service.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})

	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			h.countAuth("signup", "rejected")
			RespondBadRequest(ctx, "duplicate_email", err.Error(), nil)
			return
		}

		h.countAuth("signup", "error")
		RespondInternal(ctx, service.ErrInternal.Error())
		return
	}

	h.countAuth("signup", "ok")
	ctx.JSON(http.StatusCreated, user.NewRegistered(created))
}

func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req SignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	found, err := h.svc.Authenticate(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.countAuth("signin", "rejected")
			RespondUnauthorized(ctx, "invalid_credentials", err.Error())
			return
		}

		h.countAuth("signin", "error")
		RespondInternal(ctx, service.ErrInternal.Error())
		return
	}

	cookie, err := h.svc.SessionCookie(found.ID)

	if err != nil {
		h.countAuth("signin", "error")
		RespondInternal(ctx, service.ErrInternal.Error())
		return
	}

	h.countAuth("signin", "ok")
	ctx.Header("Set-Cookie", cookie)
	ctx.JSON(http.StatusOK, user.NewSignedIn(found))
}

// SignOut runs behind the auth guard; it only clears the cookie, there
// is no server-side session to tear down.
func (h *AuthHandler) SignOut(ctx *gin.Context) {
	ctx.Header("Set-Cookie", h.svc.LogoutCookie())
	ctx.Status(http.StatusOK)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not signed in")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	found, err := h.svc.UserByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "unauthorized", "Not signed in")
			return
		}

		RespondInternal(ctx, service.ErrInternal.Error())
		return
	}

	ctx.JSON(http.StatusOK, user.NewSignedIn(found))
}
