package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskup/internal/model"
	"taskup/internal/repository"
	"taskup/internal/service"
)

type LedgerReader interface {
	Transactions(ctx context.Context, userID, orgID uuid.UUID, limit, offset int) ([]model.PointTransaction, error)
}

type WalletReader interface {
	Wallet(ctx context.Context, userID, orgID uuid.UUID) (*service.Wallet, error)
}

type LeaderboardReader interface {
	Leaderboard(ctx context.Context, orgID uuid.UUID, period service.Period, limit int) ([]repository.LeaderboardRow, error)
}

type PointsHandler struct {
	ledger  LedgerReader
	wallets WalletReader
	board   LeaderboardReader
}

func NewPointsHandler(ledger LedgerReader, wallets WalletReader, board LeaderboardReader) *PointsHandler {
	return &PointsHandler{ledger: ledger, wallets: wallets, board: board}
}

// Me возвращает баланс текущего пользователя в активной организации
func (h *PointsHandler) Me(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	wallet, err := h.wallets.Wallet(c.Request.Context(), session.UserID, session.ActiveOrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// Transactions возвращает историю начислений, новые записи первыми
func (h *PointsHandler) Transactions(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
		return
	}

	txs, err := h.ledger.Transactions(c.Request.Context(), session.UserID, session.ActiveOrganizationID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	if txs == nil {
		txs = []model.PointTransaction{}
	}

	c.JSON(http.StatusOK, txs)
}

// Leaderboard возвращает рейтинг участников за неделю или месяц
func (h *PointsHandler) Leaderboard(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	period := service.Period(c.DefaultQuery("period", string(service.PeriodWeek)))
	rows, err := h.board.Leaderboard(c.Request.Context(), session.ActiveOrganizationID, period, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []repository.LeaderboardRow{}
	}

	c.JSON(http.StatusOK, rows)
}
