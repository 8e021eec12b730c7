package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskup/internal/model"
	"taskup/internal/service"
)

type AchievementService interface {
	CheckAll(ctx context.Context, userID, orgID uuid.UUID) (*service.AchievementReport, error)
	Acknowledge(ctx context.Context, userID, orgID uuid.UUID, ids []model.AchievementID) error
}

type AchievementHandler struct {
	achievements AchievementService
}

func NewAchievementHandler(achievements AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

// AcknowledgeRequest представляет список просмотренных достижений
type AcknowledgeRequest struct {
	AchievementIDs []model.AchievementID `json:"achievement_ids" binding:"required"`
}

// List вычисляет все достижения текущего пользователя
func (h *AchievementHandler) List(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	report, err := h.achievements.CheckAll(c.Request.Context(), session.UserID, session.ActiveOrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Acknowledge отмечает достижения как просмотренные
func (h *AchievementHandler) Acknowledge(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	var req AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.achievements.Acknowledge(c.Request.Context(), session.UserID, session.ActiveOrganizationID, req.AchievementIDs); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"acknowledged": req.AchievementIDs})
}
