package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/repository"
)

// UpsertUser creates or updates the profile keyed by :email and hands back a
// token for that email.
func (h *Handler) UpsertUser(c *gin.Context) {
	var p emailParam
	if err := c.ShouldBindUri(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req models.UserProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email != "" && req.Email != p.Email {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body email does not match path"})
		return
	}

	result, err := h.Users.UpsertProfile(c.Request.Context(), models.User{
		Email: p.Email,
		Name:  req.Name,
		Phone: req.Phone,
		Photo: req.Photo,
	})
	if err != nil {
		h.Log.Error().Err(err).Msg("upsert user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
		return
	}

	token, err := h.Tokens.Generate(p.Email)
	if err != nil {
		h.Log.Error().Err(err).Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "token": token})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// IsAdmin reports {admin: bool}. An unknown email is simply not an admin.
func (h *Handler) IsAdmin(c *gin.Context) {
	var p emailParam
	if err := c.ShouldBindUri(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), p.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.Log.Error().Err(err).Msg("find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": user.IsAdmin()})
}

func (h *Handler) MakeAdmin(c *gin.Context) {
	var p emailParam
	if err := c.ShouldBindUri(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Users.SetRole(c.Request.Context(), p.Email, models.RoleAdmin)
	if err != nil {
		h.Log.Error().Err(err).Msg("set admin role")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	c.JSON(http.StatusOK, result)
}
