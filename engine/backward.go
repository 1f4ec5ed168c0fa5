package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mohitkumar/stepline/analytics"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	"github.com/mohitkumar/stepline/util"
	"go.uber.org/zap"
)

// BackwardTargets returns the steps the item may legally return to: the
// distinct from-steps of its history that still belong to the current
// graph, ordered by step order.
func (e *Engine) BackwardTargets(item *model.WorkItem, graph *model.Graph) ([]model.Step, error) {
	records, err := e.storage.History().GetByWorkItem(item.Id)
	if err != nil {
		return nil, err
	}
	fromIds := make([]string, 0, len(records))
	for _, record := range records {
		if record.FromStepId != "" {
			fromIds = append(fromIds, record.FromStepId)
		}
	}
	steps := make([]model.Step, 0)
	for _, id := range util.Distinct(fromIds) {
		if step := graph.StepById(id); step != nil {
			steps = append(steps, *step)
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
	return steps, nil
}

func (e *Engine) moveBackward(actor model.ActorContext, item *model.WorkItem, graph *model.Graph, move model.Move) (*model.MoveResult, error) {
	if strings.TrimSpace(move.Note) == "" {
		return e.blocked(item, model.OUTCOME_COMMENT_REQUIRED, "backward moves require a note"), nil
	}
	if !e.permissions.CanMoveBackward(actor, item) {
		return e.blocked(item, model.OUTCOME_PERMISSION_DENIED,
			"backward moves are limited to admins, staff and the item creator"), nil
	}
	targets, err := e.BackwardTargets(item, graph)
	if err != nil {
		return nil, err
	}
	var targetStep *model.Step
	for i := range targets {
		if targets[i].Id == move.TargetStepId {
			targetStep = &targets[i]
			break
		}
	}
	if targetStep == nil {
		return e.blocked(item, model.OUTCOME_NOT_PREVIOUSLY_VISITED,
			fmt.Sprintf("step %s was never visited by this work item", move.TargetStepId)), nil
	}

	oldStepId := item.CurrentStepId
	expectedVersion := item.Version
	item.CurrentStepId = targetStep.Id
	item.CurrentStepEnteredAt = e.now()
	e.applyCompletion(item, targetStep)
	item.Version++

	// Bookings ahead of the rollback point that never completed are
	// stale commitments; completed ones stay as historical record.
	bookings, err := e.storage.Bookings().GetBookingsByWorkItem(item.Id)
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0)
	for _, b := range bookings {
		step := graph.StepById(b.StepId)
		if step == nil {
			continue
		}
		if step.Order > targetStep.Order && !b.Completed {
			removed = append(removed, b.Id)
		}
	}

	history := []model.HistoryRecord{
		e.newHistoryRecord(item, oldStepId, targetStep.Id, actor.UserId, move.Note, model.HISTORY_BACKWARD),
	}
	notices := make([]string, 0)
	if len(removed) > 0 {
		note := fmt.Sprintf("removed %d stale bookings invalidated by backward move: %s", len(removed), strings.Join(removed, ", "))
		history = append(history, e.newHistoryRecord(item, targetStep.Id, targetStep.Id, actor.UserId, note, model.HISTORY_COMMENT))
		notices = append(notices, note)
	}

	err = e.storage.WorkItems().CommitMove(persistence.MoveCommit{
		Item:            item,
		ExpectedVersion: expectedVersion,
		History:         history,
		DeleteBookings:  removed,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("work item moved backward", zap.String("itemId", item.Id),
		zap.String("from", oldStepId), zap.String("to", targetStep.Id),
		zap.Int("bookingsRemoved", len(removed)), zap.String("actor", actor.UserId))
	analytics.RecordMoveSuccess(item.Id, graph.Id, oldStepId, targetStep.Id, string(model.HISTORY_BACKWARD))
	e.notifier.Notify(NOTIFY_ITEM_REOPENED, item, actor.UserId)

	return &model.MoveResult{
		Success: true,
		Outcome: model.OUTCOME_OK,
		Message: fmt.Sprintf("moved back to step %q", targetStep.Name),
		Notices: notices,
		Item:    item,
	}, nil
}
