package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"taskup/internal/model"
	"taskup/internal/repository"
)

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// PointsMetric compares the user's points in the current window with the previous one.
type PointsMetric struct {
	Value      int    `json:"value"`
	UserPoints int    `json:"user_points"`
	TeamPoints int    `json:"team_points"`
	Trend      int    `json:"trend"`
	Current    Window `json:"current"`
	Previous   Window `json:"previous"`
}

type StatusCount struct {
	Status model.TaskStatus `json:"status"`
	Label  string           `json:"label"`
	Icon   string           `json:"icon"`
	Count  int              `json:"count"`
}

type Dashboard struct {
	Tasks        []StatusCount        `json:"tasks"`
	Goals        []model.GoalProgress `json:"goals"`
	WeeklyPoints PointsMetric         `json:"weekly_points"`
}

// WeekWindows returns the current and previous ISO weeks (Monday start) around now.
func WeekWindows(now time.Time, loc *time.Location) (current, previous Window) {
	day := startOfDay(now.In(loc))
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	current = Window{From: monday, To: monday.AddDate(0, 0, 7)}
	previous = Window{From: monday.AddDate(0, 0, -7), To: monday}
	return current, previous
}

// MonthWindows returns the current and previous calendar months around now.
func MonthWindows(now time.Time, loc *time.Location) (current, previous Window) {
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	current = Window{From: first, To: first.AddDate(0, 1, 0)}
	previous = Window{From: first.AddDate(0, -1, 0), To: first}
	return current, previous
}

// Trend is the rounded percentage change from previous to current.
// A zero previous value yields 100 when current is positive and 0 otherwise.
func Trend(current, previous int) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

type MetricsService struct {
	metrics MetricsStore
	tasks   TaskStore
	goals   GoalStore
	loc     *time.Location
	now     func() time.Time
}

func NewMetricsService(metrics MetricsStore, tasks TaskStore, goals GoalStore, loc *time.Location) *MetricsService {
	if loc == nil {
		loc = time.UTC
	}
	return &MetricsService{metrics: metrics, tasks: tasks, goals: goals, loc: loc, now: time.Now}
}

func (s *MetricsService) windows(period Period) (Window, Window, error) {
	switch period {
	case PeriodWeek:
		cur, prev := WeekWindows(s.now(), s.loc)
		return cur, prev, nil
	case PeriodMonth:
		cur, prev := MonthWindows(s.now(), s.loc)
		return cur, prev, nil
	}
	return Window{}, Window{}, ErrInvalidPeriod
}

// PointsEarned computes the user's and team's points for current plus the
// user's trend against previous.
func (s *MetricsService) PointsEarned(ctx context.Context, orgID, userID uuid.UUID, current, previous Window) (*PointsMetric, error) {
	var userCur, userPrev, team int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userCur, err = s.metrics.UserPoints(gctx, orgID, userID, current.From, current.To)
		return err
	})
	g.Go(func() error {
		var err error
		userPrev, err = s.metrics.UserPoints(gctx, orgID, userID, previous.From, previous.To)
		return err
	})
	g.Go(func() error {
		var err error
		team, err = s.metrics.TeamPoints(gctx, orgID, current.From, current.To)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("points earned: %w", err)
	}

	return &PointsMetric{
		Value:      userCur,
		UserPoints: userCur,
		TeamPoints: team,
		Trend:      Trend(userCur, userPrev),
		Current:    current,
		Previous:   previous,
	}, nil
}

func (s *MetricsService) PointsForPeriod(ctx context.Context, orgID, userID uuid.UUID, period Period) (*PointsMetric, error) {
	current, previous, err := s.windows(period)
	if err != nil {
		return nil, err
	}
	return s.PointsEarned(ctx, orgID, userID, current, previous)
}

func (s *MetricsService) Leaderboard(ctx context.Context, orgID uuid.UUID, period Period, limit int) ([]repository.LeaderboardRow, error) {
	current, _, err := s.windows(period)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.metrics.Leaderboard(ctx, orgID, current.From, current.To, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return rows, nil
}

// Dashboard gathers status counts, goal progress and the weekly points metric.
func (s *MetricsService) Dashboard(ctx context.Context, orgID, userID uuid.UUID) (*Dashboard, error) {
	var (
		counts map[model.TaskStatus]int
		goals  []model.Goal
		weekly *PointsMetric
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.tasks.CountByStatus(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.goals.List(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		weekly, err = s.PointsForPeriod(gctx, orgID, userID, PeriodWeek)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	dashboard := &Dashboard{
		Tasks:        make([]StatusCount, 0, len(model.TaskStatuses)),
		Goals:        make([]model.GoalProgress, 0, len(goals)),
		WeeklyPoints: *weekly,
	}
	for _, status := range model.TaskStatuses {
		dashboard.Tasks = append(dashboard.Tasks, StatusCount{
			Status: status,
			Label:  status.Label(),
			Icon:   status.Icon(),
			Count:  counts[status],
		})
	}
	for _, goal := range goals {
		dashboard.Goals = append(dashboard.Goals, progressOf(goal))
	}
	return dashboard, nil
}
