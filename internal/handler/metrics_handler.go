package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskup/internal/service"
)

type MetricsService interface {
	PointsForPeriod(ctx context.Context, orgID, userID uuid.UUID, period service.Period) (*service.PointsMetric, error)
	Dashboard(ctx context.Context, orgID, userID uuid.UUID) (*service.Dashboard, error)
}

type MetricsHandler struct {
	metrics MetricsService
}

func NewMetricsHandler(metrics MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Points сравнивает очки за текущий и предыдущий период
func (h *MetricsHandler) Points(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	period := service.Period(c.DefaultQuery("period", string(service.PeriodWeek)))
	metric, err := h.metrics.PointsForPeriod(c.Request.Context(), session.ActiveOrganizationID, session.UserID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metric)
}

// Dashboard возвращает сводку по задачам, целям и очкам за неделю
func (h *MetricsHandler) Dashboard(c *gin.Context) {
	session, _, ok := currentSession(c)
	if !ok {
		return
	}

	dashboard, err := h.metrics.Dashboard(c.Request.Context(), session.ActiveOrganizationID, session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
