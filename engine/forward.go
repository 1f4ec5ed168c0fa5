package engine

import (
	"fmt"

	"github.com/mohitkumar/stepline/analytics"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	"go.uber.org/zap"
)

func (e *Engine) executeForward(actor model.ActorContext, item *model.WorkItem, graph *model.Graph, move model.Move) (*model.MoveResult, error) {
	transition := graph.TransitionById(move.TransitionId)
	if transition == nil || !transition.Active {
		return e.blocked(item, model.OUTCOME_TRANSITION_MISMATCH,
			fmt.Sprintf("transition %s is not part of graph %s", move.TransitionId, graph.Id)), nil
	}
	if transition.FromStepId != item.CurrentStepId {
		return e.blocked(item, model.OUTCOME_TRANSITION_MISMATCH,
			"work item has moved since it was loaded, refresh and retry"), nil
	}
	if transition.RequiresComment && move.Note == "" {
		return e.blocked(item, model.OUTCOME_COMMENT_REQUIRED, "this transition requires a comment"), nil
	}
	if transition.RequiresConfirmation && !move.Confirmed {
		return e.blocked(item, model.OUTCOME_CONFIRMATION_REQUIRED, "this transition requires confirmation"), nil
	}
	if !e.permissions.CanExecute(actor, transition, item) {
		return e.blocked(item, model.OUTCOME_PERMISSION_DENIED,
			fmt.Sprintf("actor %s does not satisfy %s policy", actor.UserId, transition.PermissionLevel)), nil
	}

	currentStep := graph.StepById(item.CurrentStepId)
	if currentStep.RequiresBooking {
		bookings, err := e.bookings.BookingsForStep(item.Id, currentStep.Id)
		if err != nil {
			return nil, err
		}
		if len(bookings) == 0 {
			note := fmt.Sprintf("transition %q blocked: step %q requires a booking and none exists", transition.Label, currentStep.Name)
			if err := e.storage.History().Append(e.newHistoryRecord(item, currentStep.Id, currentStep.Id, actor.UserId, note, model.HISTORY_COMMENT)); err != nil {
				return nil, err
			}
			e.notifier.Notify(NOTIFY_ITEM_BLOCKED, item, actor.UserId)
			return e.blocked(item, model.OUTCOME_BOOKING_REQUIRED,
				fmt.Sprintf("step %q requires a booking, create one before moving on", currentStep.Name)), nil
		}
		remaining := 0
		for _, b := range bookings {
			if !b.Completed {
				remaining++
			}
		}
		if remaining > 0 {
			note := fmt.Sprintf("transition %q blocked: %d of %d bookings for step %q are not completed",
				transition.Label, remaining, len(bookings), currentStep.Name)
			if err := e.storage.History().Append(e.newHistoryRecord(item, currentStep.Id, currentStep.Id, actor.UserId, note, model.HISTORY_COMMENT)); err != nil {
				return nil, err
			}
			e.notifier.Notify(NOTIFY_ITEM_BLOCKED, item, actor.UserId)
			result := e.blocked(item, model.OUTCOME_BOOKING_INCOMPLETE,
				fmt.Sprintf("%d of %d bookings for step %q are not completed", remaining, len(bookings), currentStep.Name))
			result.BookingsRemain = remaining
			result.BookingsTotal = len(bookings)
			return result, nil
		}
	}

	toStep := graph.StepById(transition.ToStepId)
	oldStepId := item.CurrentStepId
	expectedVersion := item.Version

	item.CurrentStepId = toStep.Id
	item.CurrentStepEnteredAt = e.now()
	notices := make([]string, 0)
	if transition.AutoAssignToStepTeam && item.AssigneeId == "" && toStep.AssignedTeamId != "" {
		if memberId, ok := e.metadata.FirstActiveMember(toStep.AssignedTeamId); ok {
			item.AssigneeId = memberId
			notices = append(notices, fmt.Sprintf("auto-assigned to %s", memberId))
		}
	}
	e.applyCompletion(item, toStep)
	item.Version++

	record := e.newHistoryRecord(item, oldStepId, toStep.Id, actor.UserId, move.Note, model.HISTORY_NORMAL)
	err := e.storage.WorkItems().CommitMove(persistence.MoveCommit{
		Item:            item,
		ExpectedVersion: expectedVersion,
		History:         []model.HistoryRecord{record},
	})
	if err != nil {
		return nil, err
	}
	logger.Info("work item moved forward", zap.String("itemId", item.Id),
		zap.String("from", oldStepId), zap.String("to", toStep.Id), zap.String("actor", actor.UserId))
	analytics.RecordMoveSuccess(item.Id, graph.Id, oldStepId, toStep.Id, string(model.HISTORY_NORMAL))

	result := &model.MoveResult{
		Success: true,
		Outcome: model.OUTCOME_OK,
		Message: fmt.Sprintf("moved to step %q", toStep.Name),
		Notices: notices,
		Item:    item,
	}
	if toStep.RequiresBooking && toStep.AssignedTeamId != "" {
		result.BookingNeeded = true
		result.Notices = append(result.Notices, fmt.Sprintf("step %q requires a booking for team %s", toStep.Name, toStep.AssignedTeamId))
	}
	e.notifier.Notify(NOTIFY_ITEM_MOVED, item, actor.UserId)
	return result, nil
}

func (e *Engine) blocked(item *model.WorkItem, outcome model.MoveOutcome, message string) *model.MoveResult {
	analytics.RecordMoveBlocked(item.Id, string(outcome), message)
	return model.BlockedResult(outcome, message)
}
