package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"taskup/internal/model"
)

const (
	taskMasterThreshold      = 5
	speedDemonThreshold      = 3
	speedDemonWindow         = 30 * time.Minute
	consistencyKingThreshold = 5
	centuryClubThreshold     = 100
	perfectionistThreshold   = 25
	onFireThreshold          = 5
	onFireLookbackDays       = 14
	legendaryThreshold       = 1000
)

type achievementDef struct {
	ID          model.AchievementID
	Name        string
	Description string
}

// catalog is the fixed list of achievements in report order.
var catalog = []achievementDef{
	{model.AchievementFirstSteps, "First Steps", "Change the status of your first task"},
	{model.AchievementTaskMaster, "Task Master", "Complete 5 tasks in a single day"},
	{model.AchievementSpeedDemon, "Speed Demon", "Complete 3 tasks within 30 minutes"},
	{model.AchievementConsistencyKing, "Consistency King", "Complete tasks on 5 weekdays in a row"},
	{model.AchievementCenturyClub, "Century Club", "Complete 100 tasks"},
	{model.AchievementPerfectionist, "Perfectionist", "Your team has 25 tasks done"},
	{model.AchievementOnFire, "On Fire", "Complete tasks on 5 consecutive weekdays within two weeks"},
	{model.AchievementEliteAchiever, "Elite Achiever", "Reserved for the very best"},
	{model.AchievementLegendary, "Legendary", "Complete 1000 tasks"},
}

func knownAchievement(id model.AchievementID) bool {
	for _, def := range catalog {
		if def.ID == id {
			return true
		}
	}
	return false
}

// AchievementReport is the evaluated catalog plus the ids the user has already seen.
type AchievementReport struct {
	Achievements []model.AchievementResult `json:"achievements"`
	Acknowledged []model.AchievementID     `json:"acknowledged"`
}

// Checkers evaluates achievement rules for one user inside one organization.
type Checkers struct {
	history History
	loc     *time.Location
	now     func() time.Time
}

func NewCheckers(history History, loc *time.Location) *Checkers {
	if loc == nil {
		loc = time.UTC
	}
	return &Checkers{history: history, loc: loc, now: time.Now}
}

func (c *Checkers) FirstSteps(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	first, err := c.history.FirstStatusChange(ctx, userID, orgID)
	return first != nil, err
}

func (c *Checkers) TaskMaster(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	completions, err := c.history.CompletionsSince(ctx, userID, orgID, c.startOfToday())
	if err != nil {
		return false, err
	}
	return len(distinctTasks(completions)) >= taskMasterThreshold, nil
}

func (c *Checkers) SpeedDemon(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	completions, err := c.history.CompletionsSince(ctx, userID, orgID, c.now().Add(-speedDemonWindow))
	if err != nil {
		return false, err
	}
	return len(distinctTasks(completions)) >= speedDemonThreshold, nil
}

func (c *Checkers) ConsistencyKing(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	today := c.startOfToday()
	// five weekdays always fit in nine calendar days, plus one for an empty today
	completions, err := c.history.CompletionsSince(ctx, userID, orgID, today.AddDate(0, 0, -10))
	if err != nil {
		return false, err
	}
	return currentWeekdayStreak(c.activeDays(completions), today) >= consistencyKingThreshold, nil
}

func (c *Checkers) CenturyClub(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	count, err := c.history.CountCompletedTasks(ctx, userID, orgID)
	return count >= centuryClubThreshold, err
}

func (c *Checkers) Perfectionist(ctx context.Context, _, orgID uuid.UUID) (bool, error) {
	count, err := c.history.CountDoneTasks(ctx, orgID)
	return count >= perfectionistThreshold, err
}

func (c *Checkers) OnFire(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	today := c.startOfToday()
	from := today.AddDate(0, 0, -(onFireLookbackDays - 1))
	completions, err := c.history.CompletionsSince(ctx, userID, orgID, from)
	if err != nil {
		return false, err
	}
	return longestWeekdayRun(c.activeDays(completions), from, today) >= onFireThreshold, nil
}

func (c *Checkers) EliteAchiever(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (c *Checkers) Legendary(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	count, err := c.history.CountCompletedTasks(ctx, userID, orgID)
	return count >= legendaryThreshold, err
}

// check dispatches to the rule for id.
func (c *Checkers) check(ctx context.Context, id model.AchievementID, userID, orgID uuid.UUID) (bool, error) {
	switch id {
	case model.AchievementFirstSteps:
		return c.FirstSteps(ctx, userID, orgID)
	case model.AchievementTaskMaster:
		return c.TaskMaster(ctx, userID, orgID)
	case model.AchievementSpeedDemon:
		return c.SpeedDemon(ctx, userID, orgID)
	case model.AchievementConsistencyKing:
		return c.ConsistencyKing(ctx, userID, orgID)
	case model.AchievementCenturyClub:
		return c.CenturyClub(ctx, userID, orgID)
	case model.AchievementPerfectionist:
		return c.Perfectionist(ctx, userID, orgID)
	case model.AchievementOnFire:
		return c.OnFire(ctx, userID, orgID)
	case model.AchievementEliteAchiever:
		return c.EliteAchiever(ctx, userID, orgID)
	case model.AchievementLegendary:
		return c.Legendary(ctx, userID, orgID)
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownAchievement, id)
}

// unlockedAt recovers when a time-sensitive achievement was reached: the
// timestamp of the entry that met the threshold. Other achievements return nil.
func (c *Checkers) unlockedAt(ctx context.Context, id model.AchievementID, userID, orgID uuid.UUID) (*time.Time, error) {
	switch id {
	case model.AchievementFirstSteps:
		return c.history.FirstStatusChange(ctx, userID, orgID)
	case model.AchievementTaskMaster:
		completions, err := c.history.CompletionsSince(ctx, userID, orgID, c.startOfToday())
		if err != nil {
			return nil, err
		}
		return nthDistinct(completions, taskMasterThreshold), nil
	case model.AchievementSpeedDemon:
		completions, err := c.history.CompletionsSince(ctx, userID, orgID, c.now().Add(-speedDemonWindow))
		if err != nil {
			return nil, err
		}
		return nthDistinct(completions, speedDemonThreshold), nil
	}
	return nil, nil
}

// frozenAt returns a copy whose clock always reads t, so related rules agree
// on a single instant.
func (c *Checkers) frozenAt(t time.Time) *Checkers {
	frozen := *c
	frozen.now = func() time.Time { return t }
	return &frozen
}

func (c *Checkers) startOfToday() time.Time {
	return startOfDay(c.now().In(c.loc))
}

func (c *Checkers) activeDays(completions []model.Completion) map[time.Time]bool {
	days := make(map[time.Time]bool, len(completions))
	for _, completion := range completions {
		days[startOfDay(completion.CreatedAt.In(c.loc))] = true
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func distinctTasks(completions []model.Completion) map[uuid.UUID]bool {
	seen := make(map[uuid.UUID]bool, len(completions))
	for _, completion := range completions {
		seen[completion.TaskID] = true
	}
	return seen
}

// nthDistinct returns the time at which the nth distinct task was completed.
// completions must be oldest first.
func nthDistinct(completions []model.Completion, n int) *time.Time {
	seen := make(map[uuid.UUID]bool, n)
	for _, completion := range completions {
		if seen[completion.TaskID] {
			continue
		}
		seen[completion.TaskID] = true
		if len(seen) == n {
			at := completion.CreatedAt
			return &at
		}
	}
	return nil
}

// currentWeekdayStreak counts consecutive active weekdays ending today or, when
// today has no completions yet, ending on the previous weekday. Weekends are skipped.
func currentWeekdayStreak(active map[time.Time]bool, today time.Time) int {
	day := today
	if isWeekday(day) && !active[day] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for {
		if !isWeekday(day) {
			day = day.AddDate(0, 0, -1)
			continue
		}
		if !active[day] {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// longestWeekdayRun is the longest run of consecutive active weekdays in [from, to].
func longestWeekdayRun(active map[time.Time]bool, from, to time.Time) int {
	longest, run := 0, 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if !isWeekday(day) {
			continue
		}
		if active[day] {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}

// AchievementService runs the checkers and tracks which unlocks the user has seen.
type AchievementService struct {
	checkers *Checkers
	acks     AcknowledgementStore
	now      func() time.Time
}

func NewAchievementService(checkers *Checkers, acks AcknowledgementStore) *AchievementService {
	return &AchievementService{checkers: checkers, acks: acks, now: time.Now}
}

// CheckAll evaluates every achievement concurrently. Results follow catalog
// order and are recomputed on each call.
func (s *AchievementService) CheckAll(ctx context.Context, userID, orgID uuid.UUID) (*AchievementReport, error) {
	checkers := s.checkers.frozenAt(s.checkers.now())
	results := make([]model.AchievementResult, len(catalog))
	var acknowledged []model.AchievementID

	g, gctx := errgroup.WithContext(ctx)
	for i, def := range catalog {
		g.Go(func() error {
			unlocked, err := checkers.check(gctx, def.ID, userID, orgID)
			if err != nil {
				return fmt.Errorf("check %s: %w", def.ID, err)
			}
			results[i] = model.AchievementResult{
				ID:          def.ID,
				Name:        def.Name,
				Description: def.Description,
				Unlocked:    unlocked,
			}
			return nil
		})
	}
	g.Go(func() error {
		ids, err := s.acks.ListAcknowledged(gctx, userID, orgID)
		if err != nil {
			return fmt.Errorf("list acknowledged achievements: %w", err)
		}
		acknowledged = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	g, gctx = errgroup.WithContext(ctx)
	for i := range results {
		if !results[i].Unlocked {
			continue
		}
		g.Go(func() error {
			at, err := checkers.unlockedAt(gctx, results[i].ID, userID, orgID)
			if err != nil {
				return fmt.Errorf("unlock time of %s: %w", results[i].ID, err)
			}
			results[i].UnlockedAt = at
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[model.AchievementID]bool, len(acknowledged))
	for _, id := range acknowledged {
		seen[id] = true
	}
	for i := range results {
		results[i].Acknowledged = seen[results[i].ID]
	}

	sort.Slice(acknowledged, func(i, j int) bool { return acknowledged[i] < acknowledged[j] })
	if acknowledged == nil {
		acknowledged = []model.AchievementID{}
	}
	return &AchievementReport{Achievements: results, Acknowledged: acknowledged}, nil
}

// Acknowledge marks achievements as seen. Acknowledging twice is a no-op.
func (s *AchievementService) Acknowledge(ctx context.Context, userID, orgID uuid.UUID, ids []model.AchievementID) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if !knownAchievement(id) {
			return fmt.Errorf("%w: %s", ErrUnknownAchievement, id)
		}
	}
	return s.acks.Acknowledge(ctx, userID, orgID, ids, s.now())
}
