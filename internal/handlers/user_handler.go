package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/authz"
	"tasktracker/internal/clock"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"
	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

type UserHandler struct {
	service services.UserService
	jwt     config.JWTConfig
	clock   clock.Clock
	logger  *slog.Logger
}

func NewUserHandler(service services.UserService, jwt config.JWTConfig, clk clock.Clock, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, jwt: jwt, clock: clk, logger: logger}
}

// @Summary      Current user
// @Tags         Users
// @Produce      json
// @Success      200  {object}  UserResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	u, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "[user][me]", err)
		return
	}
	resp, err := toUserResponse(u)
	if err != nil {
		respondError(c, h.logger, "[user][me]", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Update my delivery addresses
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        contact  body      ContactRequest  true  "Contact"
// @Success      200      {object}  UserResponse
// @Router       /users/me/contact [put]
func (h *UserHandler) UpdateContact(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	u, err := h.service.UpdateContact(c.Request.Context(), userID, services.ContactUpdate{
		Email:          req.Email,
		Phone:          req.Phone,
		TelegramChatID: req.TelegramChatID,
		NotifyTelegram: req.NotifyTelegram,
	})
	if err != nil {
		respondError(c, h.logger, "[user][contact]", err)
		return
	}
	h.logger.Info("[user][contact][ok]", "user_id", userID)
	resp, err := toUserResponse(u)
	if err != nil {
		respondError(c, h.logger, "[user][contact]", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Provision a user (admin)
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      UserRequest  true  "User"
// @Success      201   {object}  UserResponse
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	u, err := h.service.Create(c.Request.Context(), &models.User{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		TelegramChatID: req.TelegramChatID,
		NotifyTelegram: req.NotifyTelegram,
		IsAdmin:        req.IsAdmin,
	})
	if err != nil {
		respondError(c, h.logger, "[user][create]", err)
		return
	}
	h.logger.Info("[user][create][ok]", "user_id", u.ID, "admin", u.IsAdmin)
	resp, err := toUserResponse(u)
	if err != nil {
		respondError(c, h.logger, "[user][create]", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "[user][list]", err)
		return
	}
	resp, err := toUserResponses(users)
	if err != nil {
		respondError(c, h.logger, "[user][list]", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Issue an access token for a user (admin)
// @Tags         Users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  TokenResponse
// @Router       /users/{id}/token [post]
func (h *UserHandler) IssueToken(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	u, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "[user][token]", err)
		return
	}
	now := h.clock.Now()
	token, err := middleware.IssueToken(h.jwt, u.ID, authz.RoleFor(u), now)
	if err != nil {
		respondError(c, h.logger, "[user][token]", err)
		return
	}
	h.logger.Info("[user][token][ok]", "user_id", u.ID)
	c.JSON(http.StatusOK, TokenResponse{Token: token, ExpiresAt: now.Add(h.jwt.TTL)})
}
