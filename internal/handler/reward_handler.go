package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskup/internal/model"
	"taskup/internal/repository"
	"taskup/internal/service"
)

type RewardService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, role model.MemberRole, in service.CreateRewardInput) (*model.Reward, error)
	List(ctx context.Context, orgID, userID uuid.UUID) ([]repository.RewardListItem, error)
	Redeem(ctx context.Context, rewardID, userID, orgID uuid.UUID) (*model.RewardRedemption, error)
	ListRedemptions(ctx context.Context, userID, orgID uuid.UUID) ([]model.RewardRedemption, error)
	SetRedemptionStatus(ctx context.Context, orgID, actorID uuid.UUID, role model.MemberRole, id uuid.UUID, status model.RedemptionStatus) (*model.RewardRedemption, error)
}

type RewardHandler struct {
	rewards RewardService
}

func NewRewardHandler(rewards RewardService) *RewardHandler {
	return &RewardHandler{rewards: rewards}
}

// RewardRequest представляет запрос на создание награды
type RewardRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost" binding:"required,gt=0"`
}

// RedemptionStatusRequest представляет запрос на обработку заявки
type RedemptionStatusRequest struct {
	Status model.RedemptionStatus `json:"status" binding:"required,redemption_status"`
}

// Create создает награду (только владелец или администратор)
func (h *RewardHandler) Create(c *gin.Context) {
	session, role, ok := currentSession(c)
	if !ok {
		return
	}

	var req RewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	reward, err := h.rewards.Create(c.Request.Context(), session.ActiveOrganizationID, session.UserID, role, service.CreateRewardInput{
		Title:       req.Title,
		Description: req.Description,
		PointsCost:  req.PointsCost,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reward)
}

// List возвращает активные награды с отметкой об уже сделанных заявках
func (h *RewardHandler) List(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	rewards, err := h.rewards.List(c.Request.Context(), session.ActiveOrganizationID, session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if rewards == nil {
		rewards = []repository.RewardListItem{}
	}

	c.JSON(http.StatusOK, rewards)
}

// Redeem создает заявку на получение награды
func (h *RewardHandler) Redeem(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}
	rewardID, ok := pathID(c, "id", "reward")
	if !ok {
		return
	}

	redemption, err := h.rewards.Redeem(c.Request.Context(), rewardID, session.UserID, session.ActiveOrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, redemption)
}

// MyRedemptions возвращает заявки текущего пользователя
func (h *RewardHandler) MyRedemptions(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	redemptions, err := h.rewards.ListRedemptions(c.Request.Context(), session.UserID, session.ActiveOrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}
	if redemptions == nil {
		redemptions = []model.RewardRedemption{}
	}

	c.JSON(http.StatusOK, redemptions)
}

// SetRedemptionStatus завершает или отменяет заявку
func (h *RewardHandler) SetRedemptionStatus(c *gin.Context) {
	session, role, ok := currentSession(c)
	if !ok {
		return
	}
	redemptionID, ok := pathID(c, "id", "redemption")
	if !ok {
		return
	}

	var req RedemptionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	redemption, err := h.rewards.SetRedemptionStatus(c.Request.Context(), session.ActiveOrganizationID, session.UserID, role, redemptionID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, redemption)
}
