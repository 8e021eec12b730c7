package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"taskup/internal/model"
)

// PointsService turns task lifecycle events into ledger entries.
// Its mutating methods expect to run inside the caller's transaction.
type PointsService struct {
	ledger  LedgerStore
	members MemberStore
}

func NewPointsService(ledger LedgerStore, members MemberStore) *PointsService {
	return &PointsService{ledger: ledger, members: members}
}

// OnStatusChange credits assignees when a task enters done and reverses their
// net credit when it leaves done. Other transitions write nothing.
func (s *PointsService) OnStatusChange(ctx context.Context, task *model.Task, from, to model.TaskStatus) ([]model.PointTransaction, error) {
	switch {
	case from != model.StatusDone && to == model.StatusDone:
		return s.apply(ctx, planCompletion(task))
	case from == model.StatusDone && to != model.StatusDone:
		credits, err := s.ledger.NetCreditsForTask(ctx, task.OrganizationID, task.ID)
		if err != nil {
			return nil, fmt.Errorf("load task credits: %w", err)
		}
		return s.apply(ctx, planReversal(task, credits))
	}
	return nil, nil
}

// OnPropertyChange brings every affected user's net credit for a done task in
// line with the task's current score and assignees.
func (s *PointsService) OnPropertyChange(ctx context.Context, task *model.Task, reason model.TaskLogAction) ([]model.PointTransaction, error) {
	if task.Status != model.StatusDone {
		return nil, nil
	}
	credits, err := s.ledger.NetCreditsForTask(ctx, task.OrganizationID, task.ID)
	if err != nil {
		return nil, fmt.Errorf("load task credits: %w", err)
	}
	return s.apply(ctx, planAdjustment(task, credits, reason))
}

func (s *PointsService) Balance(ctx context.Context, userID, orgID uuid.UUID) (int, error) {
	return s.ledger.Balance(ctx, userID, orgID)
}

func (s *PointsService) Transactions(ctx context.Context, userID, orgID uuid.UUID, limit, offset int) ([]model.PointTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.ListTransactions(ctx, userID, orgID, limit, offset)
}

func (s *PointsService) apply(ctx context.Context, entries []model.LedgerEntry) ([]model.PointTransaction, error) {
	recorded := make([]model.PointTransaction, 0, len(entries))
	for _, entry := range entries {
		if entry.Delta > 0 {
			if _, err := s.members.Get(ctx, entry.OrganizationID, entry.UserID); err != nil {
				return nil, fmt.Errorf("credit user %s: %w", entry.UserID, err)
			}
		}
		tx, err := s.ledger.Apply(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("apply %s for user %s: %w", entry.Type, entry.UserID, err)
		}
		recorded = append(recorded, *tx)
	}
	return recorded, nil
}

// planCompletion credits every current assignee an equal share of the score.
func planCompletion(task *model.Task) []model.LedgerEntry {
	share := model.PerAssigneeShare(task.Score, len(task.Assignees))
	entries := make([]model.LedgerEntry, 0, len(task.Assignees))
	for _, userID := range task.AssigneeIDs() {
		entries = append(entries, entryFor(task, userID, model.TxTaskCompleted, share, share, ""))
	}
	return sortEntries(entries)
}

// planReversal debits each user exactly the net amount they hold for the task.
func planReversal(task *model.Task, credits map[uuid.UUID]int) []model.LedgerEntry {
	var entries []model.LedgerEntry
	for userID, net := range credits {
		if net <= 0 {
			continue
		}
		entries = append(entries, entryFor(task, userID, model.TxTaskUncompleted, -net, 0, ""))
	}
	return sortEntries(entries)
}

// planAdjustment moves each user from their net credit to their current share.
// Users no longer assigned have a share of zero.
func planAdjustment(task *model.Task, credits map[uuid.UUID]int, reason model.TaskLogAction) []model.LedgerEntry {
	share := model.PerAssigneeShare(task.Score, len(task.Assignees))
	targets := make(map[uuid.UUID]int, len(task.Assignees)+len(credits))
	for userID := range credits {
		targets[userID] = 0
	}
	for _, userID := range task.AssigneeIDs() {
		targets[userID] = share
	}

	var entries []model.LedgerEntry
	for userID, target := range targets {
		delta := target - credits[userID]
		if delta == 0 {
			continue
		}
		entries = append(entries, entryFor(task, userID, model.TxTaskPropertyChanged, delta, target, reason))
	}
	return sortEntries(entries)
}

func entryFor(task *model.Task, userID uuid.UUID, typ model.TransactionType, delta, share int, reason model.TaskLogAction) model.LedgerEntry {
	taskID := task.ID
	meta := map[string]interface{}{
		"task_title": task.Title,
		"difficulty": string(task.Difficulty),
		"score":      task.Score,
		"share":      share,
	}
	if reason != "" {
		meta["reason"] = string(reason)
	}
	return model.LedgerEntry{
		UserID:         userID,
		OrganizationID: task.OrganizationID,
		TaskID:         &taskID,
		Type:           typ,
		Delta:          delta,
		Metadata:       meta,
	}
}

// sortEntries orders entries by user so balance rows are always locked in the same order.
func sortEntries(entries []model.LedgerEntry) []model.LedgerEntry {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UserID.String() < entries[j].UserID.String()
	})
	return entries
}
