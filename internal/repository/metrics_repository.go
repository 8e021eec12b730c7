package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskup/internal/model"
)

// LeaderboardRow is a member's points inside a window.
type LeaderboardRow struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
}

// ROUND(t.score::numeric / c.cnt) is the per-assignee share, rounded like model.PerAssigneeShare.
const (
	shareJoins = `
	FROM tasks t
	JOIN task_assignees ta ON ta.task_id = t.id
	JOIN (SELECT task_id, COUNT(*) AS cnt FROM task_assignees GROUP BY task_id) c ON c.task_id = t.id`
	completedInWindow = `
	WHERE t.organization_id = ? AND t.status = ? AND t.completed_at >= ? AND t.completed_at < ?`
)

// MetricsRepository runs read-only aggregations over completed tasks.
type MetricsRepository struct {
	db *gorm.DB
}

func NewMetricsRepository(db *gorm.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// UserPoints sums the user's shares of tasks completed in [from, to)
func (r *MetricsRepository) UserPoints(ctx context.Context, orgID, userID uuid.UUID, from, to time.Time) (int, error) {
	var total int
	err := conn(ctx, r.db).Raw(
		`SELECT COALESCE(SUM(ROUND(t.score::numeric / c.cnt)), 0)::int`+shareJoins+completedInWindow+` AND ta.user_id = ?`,
		orgID, model.StatusDone, from, to, userID,
	).Scan(&total).Error
	return total, err
}

// TeamPoints sums the score of assigned tasks completed in [from, to)
func (r *MetricsRepository) TeamPoints(ctx context.Context, orgID uuid.UUID, from, to time.Time) (int, error) {
	var total int
	err := conn(ctx, r.db).Raw(
		`SELECT COALESCE(SUM(t.score), 0)::int
		FROM tasks t
		WHERE t.organization_id = ? AND t.status = ? AND t.completed_at >= ? AND t.completed_at < ?
		AND EXISTS (SELECT 1 FROM task_assignees ta WHERE ta.task_id = t.id)`,
		orgID, model.StatusDone, from, to,
	).Scan(&total).Error
	return total, err
}

// Leaderboard ranks members by their shares of tasks completed in [from, to)
func (r *MetricsRepository) Leaderboard(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := conn(ctx, r.db).Raw(
		`SELECT ta.user_id AS user_id, u.name AS name,
			COALESCE(SUM(ROUND(t.score::numeric / c.cnt)), 0)::int AS points`+shareJoins+`
		JOIN users u ON u.id = ta.user_id`+completedInWindow+`
		GROUP BY ta.user_id, u.name
		ORDER BY points DESC, u.name
		LIMIT ?`,
		orgID, model.StatusDone, from, to, limit,
	).Scan(&rows).Error
	return rows, err
}
