package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskup/internal/auth"
	"taskup/internal/middleware"
	"taskup/internal/model"
	"taskup/internal/repository"
	"taskup/internal/service"
)

// currentSession достает пользователя и активную организацию; при отсутствии сессии отвечает 401
func currentSession(c *gin.Context) (auth.Session, model.MemberRole, bool) {
	session, role, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return auth.Session{}, "", false
	}
	return session, role, true
}

// pathID парсит UUID из параметра маршрута
func pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError переводит ошибку сервиса в HTTP статус
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": rootMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound),
		errors.Is(err, repository.ErrMemberNotFound),
		errors.Is(err, repository.ErrRewardNotFound),
		errors.Is(err, repository.ErrRedemptionNotFound),
		errors.Is(err, repository.ErrGoalNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyRedeemed):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInsufficientPoints),
		errors.Is(err, repository.ErrNegativeBalance),
		errors.Is(err, service.ErrRewardInactive),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrUnknownAchievement),
		errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, service.ErrInvalidPointsCost):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// rootMessage отдает клиенту текст исходной доменной ошибки без внутренних оберток
func rootMessage(err error) string {
	for _, target := range []error{
		repository.ErrTaskNotFound,
		repository.ErrMemberNotFound,
		repository.ErrRewardNotFound,
		repository.ErrRedemptionNotFound,
		repository.ErrGoalNotFound,
		repository.ErrNegativeBalance,
		service.ErrAlreadyRedeemed,
		service.ErrForbidden,
		service.ErrInsufficientPoints,
		service.ErrRewardInactive,
		service.ErrInvalidTransition,
		service.ErrUnknownAchievement,
		service.ErrInvalidPeriod,
		service.ErrInvalidPointsCost,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
