package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskup/internal/handler"
	"taskup/internal/model"
	"taskup/internal/repository"
	"taskup/internal/service"
)

// Мок сервиса наград
type MockRewardService struct {
	mock.Mock
}

func (m *MockRewardService) redemption(args mock.Arguments) (*model.RewardRedemption, error) {
	r := args.Get(0)
	if r == nil {
		return nil, args.Error(1)
	}
	return r.(*model.RewardRedemption), args.Error(1)
}

func (m *MockRewardService) Create(ctx context.Context, orgID, actorID uuid.UUID, role model.MemberRole, in service.CreateRewardInput) (*model.Reward, error) {
	args := m.Called(ctx, orgID, actorID, role, in)
	reward := args.Get(0)
	if reward == nil {
		return nil, args.Error(1)
	}
	return reward.(*model.Reward), args.Error(1)
}

func (m *MockRewardService) List(ctx context.Context, orgID, userID uuid.UUID) ([]repository.RewardListItem, error) {
	args := m.Called(ctx, orgID, userID)
	items, _ := args.Get(0).([]repository.RewardListItem)
	return items, args.Error(1)
}

func (m *MockRewardService) Redeem(ctx context.Context, rewardID, userID, orgID uuid.UUID) (*model.RewardRedemption, error) {
	return m.redemption(m.Called(ctx, rewardID, userID, orgID))
}

func (m *MockRewardService) ListRedemptions(ctx context.Context, userID, orgID uuid.UUID) ([]model.RewardRedemption, error) {
	args := m.Called(ctx, userID, orgID)
	items, _ := args.Get(0).([]model.RewardRedemption)
	return items, args.Error(1)
}

func (m *MockRewardService) SetRedemptionStatus(ctx context.Context, orgID, actorID uuid.UUID, role model.MemberRole, id uuid.UUID, status model.RedemptionStatus) (*model.RewardRedemption, error) {
	return m.redemption(m.Called(ctx, orgID, actorID, role, id, status))
}

func setupRewardTest(t *testing.T, role model.MemberRole) (*gin.Engine, *MockRewardService) {
	r, api := newRouter(t, role)
	mockSvc := new(MockRewardService)
	h := handler.NewRewardHandler(mockSvc)

	api.POST("/rewards", h.Create)
	api.GET("/rewards", h.List)
	api.POST("/rewards/:id/redeem", h.Redeem)
	api.GET("/redemptions/me", h.MyRedemptions)
	api.PATCH("/redemptions/:id/status", h.SetRedemptionStatus)
	return r, mockSvc
}

func TestRewardCreate_Success(t *testing.T) {
	// Arrange
	router, mockSvc := setupRewardTest(t, model.RoleAdmin)
	in := service.CreateRewardInput{Title: "Day off", PointsCost: 50}
	mockSvc.On("Create", mock.Anything, testOrgID, testUserID, model.RoleAdmin, in).
		Return(&model.Reward{ID: uuid.New(), Title: "Day off", PointsCost: 50, Active: true}, nil)

	// Act
	resp := doJSON(router, "POST", "/rewards", handler.RewardRequest{Title: "Day off", PointsCost: 50})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestRewardCreate_NonPositiveCost(t *testing.T) {
	// Arrange
	router, mockSvc := setupRewardTest(t, model.RoleAdmin)

	// Act
	resp := doJSON(router, "POST", "/rewards", map[string]interface{}{"title": "Free", "points_cost": -5})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRewardCreate_Forbidden(t *testing.T) {
	// Arrange
	router, mockSvc := setupRewardTest(t, model.RoleMember)
	mockSvc.On("Create", mock.Anything, testOrgID, testUserID, model.RoleMember, mock.Anything).
		Return(nil, service.ErrForbidden)

	// Act
	resp := doJSON(router, "POST", "/rewards", handler.RewardRequest{Title: "Day off", PointsCost: 50})

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRewardList_EmptyIsArray(t *testing.T) {
	// Arrange
	router, mockSvc := setupRewardTest(t, model.RoleMember)
	mockSvc.On("List", mock.Anything, testOrgID, testUserID).Return(nil, nil)

	// Act
	resp := doJSON(router, "GET", "/rewards", nil)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
}

func TestRewardRedeem_Success(t *testing.T) {
	// Arrange
	router, mockSvc := setupRewardTest(t, model.RoleMember)
	rewardID := uuid.New()
	mockSvc.On("Redeem", mock.Anything, rewardID, testUserID, testOrgID).Return(&model.RewardRedemption{
		ID:          uuid.New(),
		RewardID:    rewardID,
		UserID:      testUserID,
		Status:      model.RedemptionPending,
		PointsSpent: 50,
	}, nil)

	// Act
	resp := doJSON(router, "POST", "/rewards/"+rewardID.String()+"/redeem", nil)

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var body model.RewardRedemption
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, model.RedemptionPending, body.Status)
	assert.Equal(t, 50, body.PointsSpent)
}

func TestRewardRedeem_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"already redeemed", fmt.Errorf("redeem: %w", service.ErrAlreadyRedeemed), http.StatusConflict, service.ErrAlreadyRedeemed.Error()},
		{"insufficient points", service.ErrInsufficientPoints, http.StatusUnprocessableEntity, service.ErrInsufficientPoints.Error()},
		{"inactive reward", service.ErrRewardInactive, http.StatusUnprocessableEntity, service.ErrRewardInactive.Error()},
		{"unknown reward", repository.ErrRewardNotFound, http.StatusNotFound, repository.ErrRewardNotFound.Error()},
		{"database down", fmt.Errorf("connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			router, mockSvc := setupRewardTest(t, model.RoleMember)
			rewardID := uuid.New()
			mockSvc.On("Redeem", mock.Anything, rewardID, testUserID, testOrgID).Return(nil, tt.err)

			// Act
			resp := doJSON(router, "POST", "/rewards/"+rewardID.String()+"/redeem", nil)

			// Assert
			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, tt.message, errorMessage(t, resp))
		})
	}
}

func TestRedemptionStatus_InvalidStatus(t *testing.T) {
	// Arrange
	router, mockSvc := setupRewardTest(t, model.RoleOwner)

	// Act
	resp := doJSON(router, "PATCH", "/redemptions/"+uuid.NewString()+"/status", map[string]string{"status": "refunded"})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockSvc.AssertNotCalled(t, "SetRedemptionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRedemptionStatus_Completed(t *testing.T) {
	// Arrange
	router, mockSvc := setupRewardTest(t, model.RoleOwner)
	id := uuid.New()
	mockSvc.On("SetRedemptionStatus", mock.Anything, testOrgID, testUserID, model.RoleOwner, id, model.RedemptionCompleted).
		Return(&model.RewardRedemption{ID: id, Status: model.RedemptionCompleted, ProcessedBy: &testUserID}, nil)

	// Act
	resp := doJSON(router, "PATCH", "/redemptions/"+id.String()+"/status", handler.RedemptionStatusRequest{Status: model.RedemptionCompleted})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	mockSvc.AssertExpectations(t)
}
