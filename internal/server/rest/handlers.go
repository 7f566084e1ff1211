package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/signmanager/internal/common"
	"github.com/dmitrijs2005/signmanager/internal/server/auth"
	"github.com/dmitrijs2005/signmanager/internal/validation"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,minbytes=8,maxbytes=72"`
	Username string `json:"username" validate:"max=50"`
}

type userResponse struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// bind decodes and validates the JSON body; on failure the response is
// already written.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "malformed request body", nil)
		return false
	}
	if err := validation.Validate(dst); err != nil {
		var verr *validation.Error
		var fields any
		if errors.As(err, &verr) {
			fields = verr.Fields
		}
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "validation failed", fields)
		return false
	}
	return true
}

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	user, err := s.users.Register(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorDuplicateIdentifier):
			respondError(c, http.StatusConflict, CodeEmailAlreadyExists, "email already registered", nil)
		case errors.Is(err, common.ErrorValidation):
			respondError(c, http.StatusBadRequest, CodeValidationFailed, err.Error(), nil)
		default:
			s.logger.Error(ctx, "registration failed", "error", err)
			respondServerError(c)
		}
		return
	}

	respond(c, http.StatusCreated, "user registered", userResponse{ID: user.ID, Email: user.Email, Username: user.DisplayName})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	token, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, CodeAuthFail, "invalid email or password", nil)
			return
		}
		s.logger.Error(ctx, "login failed", "error", err)
		respondServerError(c)
		return
	}

	respond(c, http.StatusOK, "login successful", loginResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt.Unix(),
	})
}

func (s *HTTPServer) me(c *gin.Context) {
	ctx := c.Request.Context()
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthenticated", nil)
		return
	}

	user, err := s.users.Profile(ctx, p.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(c, http.StatusNotFound, CodeUserNotFound, "user not found", nil)
			return
		}
		s.logger.Error(ctx, "profile lookup failed", "error", err)
		respondServerError(c)
		return
	}

	respond(c, http.StatusOK, "ok", userResponse{Email: user.Email, Username: user.DisplayName})
}
