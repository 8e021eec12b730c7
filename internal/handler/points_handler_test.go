package handler_test

import (
	"context"
	"encoding/json"
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

// Мок источников данных по очкам
type MockPoints struct {
	mock.Mock
}

func (m *MockPoints) Transactions(ctx context.Context, userID, orgID uuid.UUID, limit, offset int) ([]model.PointTransaction, error) {
	args := m.Called(ctx, userID, orgID, limit, offset)
	txs, _ := args.Get(0).([]model.PointTransaction)
	return txs, args.Error(1)
}

func (m *MockPoints) Wallet(ctx context.Context, userID, orgID uuid.UUID) (*service.Wallet, error) {
	args := m.Called(ctx, userID, orgID)
	w := args.Get(0)
	if w == nil {
		return nil, args.Error(1)
	}
	return w.(*service.Wallet), args.Error(1)
}

func (m *MockPoints) Leaderboard(ctx context.Context, orgID uuid.UUID, period service.Period, limit int) ([]repository.LeaderboardRow, error) {
	args := m.Called(ctx, orgID, period, limit)
	rows, _ := args.Get(0).([]repository.LeaderboardRow)
	return rows, args.Error(1)
}

func setupPointsTest(t *testing.T) (*gin.Engine, *MockPoints) {
	r, api := newRouter(t, model.RoleMember)
	m := new(MockPoints)
	h := handler.NewPointsHandler(m, m, m)

	api.GET("/points/me", h.Me)
	api.GET("/points/me/transactions", h.Transactions)
	api.GET("/points/leaderboard", h.Leaderboard)
	return r, m
}

func TestPointsMe_ReturnsWallet(t *testing.T) {
	// Arrange
	router, m := setupPointsTest(t)
	m.On("Wallet", mock.Anything, testUserID, testOrgID).
		Return(&service.Wallet{TotalPoints: 100, PointsSpent: 50, Available: 50}, nil)

	// Act
	resp := doJSON(router, "GET", "/points/me", nil)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var wallet service.Wallet
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &wallet))
	assert.Equal(t, service.Wallet{TotalPoints: 100, PointsSpent: 50, Available: 50}, wallet)
}

func TestPointsTransactions_PassesPaging(t *testing.T) {
	// Arrange
	router, m := setupPointsTest(t)
	m.On("Transactions", mock.Anything, testUserID, testOrgID, 20, 40).Return(nil, nil)

	// Act
	resp := doJSON(router, "GET", "/points/me/transactions?limit=20&offset=40", nil)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
	m.AssertExpectations(t)
}

func TestPointsTransactions_InvalidLimit(t *testing.T) {
	// Arrange
	router, m := setupPointsTest(t)

	// Act
	resp := doJSON(router, "GET", "/points/me/transactions?limit=abc", nil)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	m.AssertNotCalled(t, "Transactions", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPointsLeaderboard_DefaultsToWeek(t *testing.T) {
	// Arrange
	router, m := setupPointsTest(t)
	rows := []repository.LeaderboardRow{{UserID: uuid.New(), Name: "Alice", Points: 30}}
	m.On("Leaderboard", mock.Anything, testOrgID, service.PeriodWeek, 10).Return(rows, nil)

	// Act
	resp := doJSON(router, "GET", "/points/leaderboard", nil)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var body []repository.LeaderboardRow
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, rows, body)
}

func TestPointsLeaderboard_InvalidPeriod(t *testing.T) {
	// Arrange
	router, m := setupPointsTest(t)
	m.On("Leaderboard", mock.Anything, testOrgID, service.Period("year"), 10).Return(nil, service.ErrInvalidPeriod)

	// Act
	resp := doJSON(router, "GET", "/points/leaderboard?period=year", nil)

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, service.ErrInvalidPeriod.Error(), errorMessage(t, resp))
}
