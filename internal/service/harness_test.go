package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"taskup/internal/model"
)

// harness wires the task and points services over in-memory stores with a manual clock.
type harness struct {
	ctx     context.Context
	orgID   uuid.UUID
	actorID uuid.UUID
	now     time.Time

	members *fakeMembers
	tasks   *fakeTasks
	logs    *fakeLogs
	ledger  *fakeLedger
	points  *PointsService
	taskSvc *TaskService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ctx:     context.Background(),
		orgID:   uuid.New(),
		actorID: uuid.New(),
		now:     time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC), // среда
		members: newFakeMembers(),
		tasks:   newFakeTasks(),
		ledger:  newFakeLedger(),
	}
	h.logs = &fakeLogs{tasks: h.tasks}
	h.ledger.clock = h.clock
	h.members.add(h.orgID, h.actorID, model.RoleAdmin)
	h.points = NewPointsService(h.ledger, h.members)
	h.taskSvc = NewTaskService(fakeTx{}, h.tasks, h.logs, h.members, h.points)
	h.taskSvc.now = h.clock
	return h
}

func (h *harness) clock() time.Time {
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func (h *harness) addMember() uuid.UUID {
	userID := uuid.New()
	h.members.add(h.orgID, userID, model.RoleMember)
	return userID
}

func (h *harness) createTask(t *testing.T, difficulty model.Difficulty, assignees ...uuid.UUID) *model.Task {
	t.Helper()
	change, err := h.taskSvc.Create(h.ctx, h.orgID, h.actorID, CreateTaskInput{
		Title:       "Task " + string(difficulty),
		Status:      model.StatusTodo,
		Priority:    model.PriorityMedium,
		Difficulty:  difficulty,
		AssigneeIDs: assignees,
	})
	require.NoError(t, err)
	return change.Task
}

func (h *harness) setStatus(t *testing.T, taskID uuid.UUID, status model.TaskStatus) *TaskChange {
	t.Helper()
	change, err := h.taskSvc.ChangeStatus(h.ctx, h.orgID, h.actorID, taskID, status)
	require.NoError(t, err)
	return change
}

func (h *harness) balance(t *testing.T, userID uuid.UUID) int {
	t.Helper()
	total, err := h.ledger.Balance(h.ctx, userID, h.orgID)
	require.NoError(t, err)
	return total
}

// requireLedgerConsistent checks that every balance equals the sum of its
// transactions and that each transaction continues from the previous one.
func (h *harness) requireLedgerConsistent(t *testing.T) {
	t.Helper()
	sums := map[balanceKey]int{}
	last := map[balanceKey]int{}
	for _, tx := range h.ledger.txs {
		key := balanceKey{tx.UserID, tx.OrganizationID}
		require.Equal(t, last[key], tx.PreviousTotal, "previous total must continue the chain")
		require.Equal(t, tx.PreviousTotal+tx.PointsChange, tx.NewTotal)
		last[key] = tx.NewTotal
		sums[key] += tx.PointsChange
	}
	for key, total := range h.ledger.balances {
		require.Equal(t, sums[key], total)
		require.GreaterOrEqual(t, total, 0)
	}
}
