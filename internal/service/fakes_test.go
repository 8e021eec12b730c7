package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskup/internal/model"
	"taskup/internal/repository"
)

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type balanceKey struct {
	user uuid.UUID
	org  uuid.UUID
}

// fakeLedger keeps balances and transactions in memory with the same rules as
// the postgres ledger.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[balanceKey]int
	txs      []model.PointTransaction
	clock    func() time.Time
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[balanceKey]int{}, clock: time.Now}
}

func (l *fakeLedger) Apply(_ context.Context, entry model.LedgerEntry) (*model.PointTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := balanceKey{entry.UserID, entry.OrganizationID}
	previous := l.balances[key]
	newTotal := previous + entry.Delta
	if newTotal < 0 {
		return nil, repository.ErrNegativeBalance
	}
	l.balances[key] = newTotal

	tx := model.PointTransaction{
		ID:              uuid.New(),
		UserID:          entry.UserID,
		OrganizationID:  entry.OrganizationID,
		TaskID:          entry.TaskID,
		TransactionType: entry.Type,
		PointsChange:    entry.Delta,
		PreviousTotal:   previous,
		NewTotal:        newTotal,
		Metadata:        entry.Metadata,
		CreatedAt:       l.clock(),
	}
	l.txs = append(l.txs, tx)
	return &tx, nil
}

func (l *fakeLedger) Balance(_ context.Context, userID, orgID uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[balanceKey{userID, orgID}], nil
}

func (l *fakeLedger) LockBalance(ctx context.Context, userID, orgID uuid.UUID) (int, error) {
	return l.Balance(ctx, userID, orgID)
}

func (l *fakeLedger) NetCreditsForTask(_ context.Context, orgID, taskID uuid.UUID) (map[uuid.UUID]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	credits := map[uuid.UUID]int{}
	for _, tx := range l.txs {
		if tx.OrganizationID == orgID && tx.TaskID != nil && *tx.TaskID == taskID {
			credits[tx.UserID] += tx.PointsChange
		}
	}
	return credits, nil
}

func (l *fakeLedger) ListTransactions(_ context.Context, userID, orgID uuid.UUID, limit, offset int) ([]model.PointTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.PointTransaction
	for i := len(l.txs) - 1; i >= 0; i-- {
		tx := l.txs[i]
		if tx.UserID == userID && tx.OrganizationID == orgID {
			out = append(out, tx)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *fakeLedger) userTxs(userID uuid.UUID) []model.PointTransaction {
	var out []model.PointTransaction
	for _, tx := range l.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

type fakeMembers struct {
	members map[uuid.UUID]map[uuid.UUID]model.MemberRole
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{members: map[uuid.UUID]map[uuid.UUID]model.MemberRole{}}
}

func (m *fakeMembers) add(orgID, userID uuid.UUID, role model.MemberRole) {
	if m.members[orgID] == nil {
		m.members[orgID] = map[uuid.UUID]model.MemberRole{}
	}
	m.members[orgID][userID] = role
}

func (m *fakeMembers) Get(_ context.Context, orgID, userID uuid.UUID) (*model.Member, error) {
	role, ok := m.members[orgID][userID]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	return &model.Member{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		User:           model.User{ID: userID, Name: userID.String()[:8]},
	}, nil
}

func (m *fakeMembers) List(ctx context.Context, orgID uuid.UUID) ([]model.Member, error) {
	var out []model.Member
	for userID := range m.members[orgID] {
		member, _ := m.Get(ctx, orgID, userID)
		out = append(out, *member)
	}
	return out, nil
}

type fakeTasks struct {
	tasks     map[uuid.UUID]*model.Task
	assignees map[uuid.UUID][]uuid.UUID
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[uuid.UUID]*model.Task{}, assignees: map[uuid.UUID][]uuid.UUID{}}
}

func (f *fakeTasks) load(task *model.Task) *model.Task {
	copied := *task
	copied.Assignees = nil
	for _, userID := range f.assignees[task.ID] {
		copied.Assignees = append(copied.Assignees, model.User{ID: userID})
	}
	return &copied
}

func (f *fakeTasks) Create(_ context.Context, task *model.Task, assigneeIDs []uuid.UUID) error {
	stored := *task
	stored.Assignees = nil
	f.tasks[task.ID] = &stored
	f.assignees[task.ID] = append([]uuid.UUID(nil), assigneeIDs...)
	return nil
}

func (f *fakeTasks) GetByID(_ context.Context, orgID, id uuid.UUID) (*model.Task, error) {
	task, ok := f.tasks[id]
	if !ok || task.OrganizationID != orgID {
		return nil, repository.ErrTaskNotFound
	}
	return f.load(task), nil
}

func (f *fakeTasks) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*model.Task, error) {
	return f.GetByID(ctx, orgID, id)
}

func (f *fakeTasks) List(_ context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	var out []model.Task
	for _, task := range f.tasks {
		if task.OrganizationID == filter.OrganizationID {
			out = append(out, *f.load(task))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeTasks) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	task, ok := f.tasks[id]
	if !ok {
		return repository.ErrTaskNotFound
	}
	for column, value := range fields {
		switch column {
		case "status":
			task.Status = value.(model.TaskStatus)
		case "position":
			task.Position = value.(int)
		case "completed_at":
			if at, ok := value.(time.Time); ok {
				task.CompletedAt = &at
			} else {
				task.CompletedAt = nil
			}
		case "difficulty":
			task.Difficulty = value.(model.Difficulty)
		case "score":
			task.Score = value.(int)
		case "priority":
			task.Priority = value.(model.TaskPriority)
		}
	}
	return nil
}

func (f *fakeTasks) NextPosition(_ context.Context, orgID uuid.UUID, status model.TaskStatus) (int, error) {
	next := 0
	for _, task := range f.tasks {
		if task.OrganizationID == orgID && task.Status == status && task.Position >= next {
			next = task.Position + 1
		}
	}
	return next, nil
}

func (f *fakeTasks) Delete(_ context.Context, orgID, id uuid.UUID) error {
	task, ok := f.tasks[id]
	if !ok || task.OrganizationID != orgID {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, id)
	delete(f.assignees, id)
	return nil
}

func (f *fakeTasks) AddAssignee(_ context.Context, taskID, userID uuid.UUID) (bool, error) {
	for _, id := range f.assignees[taskID] {
		if id == userID {
			return false, nil
		}
	}
	f.assignees[taskID] = append(f.assignees[taskID], userID)
	return true, nil
}

func (f *fakeTasks) RemoveAssignee(_ context.Context, taskID, userID uuid.UUID) (bool, error) {
	ids := f.assignees[taskID]
	for i, id := range ids {
		if id == userID {
			f.assignees[taskID] = append(ids[:i:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTasks) CountByStatus(_ context.Context, orgID uuid.UUID) (map[model.TaskStatus]int, error) {
	counts := map[model.TaskStatus]int{}
	for _, task := range f.tasks {
		if task.OrganizationID == orgID {
			counts[task.Status]++
		}
	}
	return counts, nil
}

// fakeLogs stores task logs and answers the achievement history queries from them.
type fakeLogs struct {
	logs  []model.TaskLog
	tasks *fakeTasks
}

func (f *fakeLogs) Create(_ context.Context, entry *model.TaskLog) error {
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeLogs) ListByTask(_ context.Context, orgID, taskID uuid.UUID) ([]model.TaskLog, error) {
	var out []model.TaskLog
	for i := len(f.logs) - 1; i >= 0; i-- {
		entry := f.logs[i]
		if entry.OrganizationID == orgID && entry.TaskID != nil && *entry.TaskID == taskID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeLogs) statusChanges(userID, orgID uuid.UUID) []model.TaskLog {
	var out []model.TaskLog
	for _, entry := range f.logs {
		if entry.UserID == userID && entry.OrganizationID == orgID && entry.Action == model.ActionStatusChanged {
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeLogs) FirstStatusChange(_ context.Context, userID, orgID uuid.UUID) (*time.Time, error) {
	changes := f.statusChanges(userID, orgID)
	if len(changes) == 0 {
		return nil, nil
	}
	return &changes[0].CreatedAt, nil
}

func (f *fakeLogs) CompletionsSince(_ context.Context, userID, orgID uuid.UUID, since time.Time) ([]model.Completion, error) {
	var out []model.Completion
	for _, entry := range f.statusChanges(userID, orgID) {
		if entry.NewValue == nil || *entry.NewValue != string(model.StatusDone) {
			continue
		}
		if entry.CreatedAt.Before(since) {
			continue
		}
		// У удаленной задачи task_id обнулен, ключом служит id записи
		taskID := entry.ID
		if entry.TaskID != nil {
			taskID = *entry.TaskID
		}
		out = append(out, model.Completion{TaskID: taskID, CreatedAt: entry.CreatedAt})
	}
	return out, nil
}

func (f *fakeLogs) CountCompletedTasks(ctx context.Context, userID, orgID uuid.UUID) (int64, error) {
	completions, _ := f.CompletionsSince(ctx, userID, orgID, time.Time{})
	return int64(len(distinctTasks(completions))), nil
}

func (f *fakeLogs) CountDoneTasks(_ context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	if f.tasks == nil {
		return 0, nil
	}
	for _, task := range f.tasks.tasks {
		if task.OrganizationID == orgID && task.Status == model.StatusDone {
			count++
		}
	}
	return count, nil
}

type fakeAcks struct {
	mu   sync.Mutex
	seen map[model.AchievementID]bool
}

func (f *fakeAcks) ListAcknowledged(context.Context, uuid.UUID, uuid.UUID) ([]model.AchievementID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AchievementID
	for id := range f.seen {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeAcks) Acknowledge(_ context.Context, _, _ uuid.UUID, ids []model.AchievementID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[model.AchievementID]bool{}
	}
	for _, id := range ids {
		f.seen[id] = true
	}
	return nil
}

type fakeRewards struct {
	rewards     map[uuid.UUID]*model.Reward
	redemptions []*model.RewardRedemption
	createErr   error
}

func newFakeRewards() *fakeRewards {
	return &fakeRewards{rewards: map[uuid.UUID]*model.Reward{}}
}

func (f *fakeRewards) Create(_ context.Context, reward *model.Reward) error {
	f.rewards[reward.ID] = reward
	return nil
}

func (f *fakeRewards) GetByID(_ context.Context, orgID, id uuid.UUID) (*model.Reward, error) {
	reward, ok := f.rewards[id]
	if !ok || reward.OrganizationID != orgID {
		return nil, repository.ErrRewardNotFound
	}
	copied := *reward
	return &copied, nil
}

func (f *fakeRewards) ListActive(_ context.Context, orgID, userID uuid.UUID) ([]repository.RewardListItem, error) {
	var out []repository.RewardListItem
	for _, reward := range f.rewards {
		if reward.OrganizationID == orgID && reward.Active {
			out = append(out, repository.RewardListItem{Reward: *reward})
		}
	}
	return out, nil
}

func (f *fakeRewards) FindOpenRedemption(_ context.Context, userID, rewardID uuid.UUID) (*model.RewardRedemption, error) {
	for _, r := range f.redemptions {
		if r.UserID == userID && r.RewardID == rewardID && r.Status != model.RedemptionCancelled {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRewards) SpentPoints(_ context.Context, userID, orgID uuid.UUID) (int, error) {
	total := 0
	for _, r := range f.redemptions {
		if r.UserID == userID && r.OrganizationID == orgID && r.Status != model.RedemptionCancelled {
			total += r.PointsSpent
		}
	}
	return total, nil
}

func (f *fakeRewards) CreateRedemption(_ context.Context, redemption *model.RewardRedemption) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *redemption
	f.redemptions = append(f.redemptions, &copied)
	return nil
}

func (f *fakeRewards) ListRedemptions(_ context.Context, userID, orgID uuid.UUID) ([]model.RewardRedemption, error) {
	var out []model.RewardRedemption
	for _, r := range f.redemptions {
		if r.UserID == userID && r.OrganizationID == orgID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRewards) GetRedemptionForUpdate(_ context.Context, orgID, id uuid.UUID) (*model.RewardRedemption, error) {
	for _, r := range f.redemptions {
		if r.ID == id && r.OrganizationID == orgID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrRedemptionNotFound
}

func (f *fakeRewards) UpdateRedemption(_ context.Context, redemption *model.RewardRedemption) error {
	for i, r := range f.redemptions {
		if r.ID == redemption.ID {
			copied := *redemption
			f.redemptions[i] = &copied
			return nil
		}
	}
	return repository.ErrRedemptionNotFound
}

type fakeGoals struct {
	goals map[uuid.UUID]*model.Goal
	tasks *fakeTasks
	links map[uuid.UUID][]uuid.UUID
	users map[uuid.UUID][]uuid.UUID
}

func newFakeGoals(tasks *fakeTasks) *fakeGoals {
	return &fakeGoals{
		goals: map[uuid.UUID]*model.Goal{},
		tasks: tasks,
		links: map[uuid.UUID][]uuid.UUID{},
		users: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeGoals) load(goal *model.Goal) *model.Goal {
	copied := *goal
	copied.Tasks = nil
	for _, taskID := range f.links[goal.ID] {
		if task, ok := f.tasks.tasks[taskID]; ok {
			copied.Tasks = append(copied.Tasks, *task)
		}
	}
	copied.Assignees = nil
	for _, userID := range f.users[goal.ID] {
		copied.Assignees = append(copied.Assignees, model.User{ID: userID})
	}
	return &copied
}

func (f *fakeGoals) Create(_ context.Context, goal *model.Goal) error {
	copied := *goal
	f.goals[goal.ID] = &copied
	return nil
}

func (f *fakeGoals) GetByID(_ context.Context, orgID, id uuid.UUID) (*model.Goal, error) {
	goal, ok := f.goals[id]
	if !ok || goal.OrganizationID != orgID {
		return nil, repository.ErrGoalNotFound
	}
	return f.load(goal), nil
}

func (f *fakeGoals) List(_ context.Context, orgID uuid.UUID) ([]model.Goal, error) {
	var out []model.Goal
	for _, goal := range f.goals {
		if goal.OrganizationID == orgID {
			out = append(out, *f.load(goal))
		}
	}
	return out, nil
}

func (f *fakeGoals) AttachTask(_ context.Context, goalID, taskID uuid.UUID) error {
	for _, id := range f.links[goalID] {
		if id == taskID {
			return nil
		}
	}
	f.links[goalID] = append(f.links[goalID], taskID)
	return nil
}

func (f *fakeGoals) AddAssignee(_ context.Context, goalID, userID uuid.UUID) error {
	f.users[goalID] = append(f.users[goalID], userID)
	return nil
}

func (f *fakeGoals) UpdateStatus(_ context.Context, orgID, id uuid.UUID, status model.GoalStatus) error {
	goal, ok := f.goals[id]
	if !ok || goal.OrganizationID != orgID {
		return repository.ErrGoalNotFound
	}
	goal.Status = status
	return nil
}

type fakeMetrics struct {
	user     map[time.Time]int
	team     map[time.Time]int
	err      error
	rows     []repository.LeaderboardRow
	lastFrom time.Time
}

func (f *fakeMetrics) UserPoints(_ context.Context, _, _ uuid.UUID, from, _ time.Time) (int, error) {
	return f.user[from], f.err
}

func (f *fakeMetrics) TeamPoints(_ context.Context, _ uuid.UUID, from, _ time.Time) (int, error) {
	return f.team[from], f.err
}

func (f *fakeMetrics) Leaderboard(_ context.Context, _ uuid.UUID, from, _ time.Time, limit int) ([]repository.LeaderboardRow, error) {
	f.lastFrom = from
	if len(f.rows) > limit {
		return f.rows[:limit], f.err
	}
	return f.rows, f.err
}
