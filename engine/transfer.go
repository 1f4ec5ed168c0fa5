package engine

import (
	"fmt"
	"strings"

	"github.com/mohitkumar/stepline/analytics"
	api "github.com/mohitkumar/stepline/api/v1"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	"go.uber.org/zap"
)

func (e *Engine) transfer(actor model.ActorContext, item *model.WorkItem, graph *model.Graph, move model.Move) (*model.MoveResult, error) {
	if move.DestGraphId == item.GraphId {
		return e.blocked(item, model.OUTCOME_SAME_GRAPH, "destination graph is the item's current graph"), nil
	}
	destGraph, err := e.metadata.GetGraph(move.DestGraphId)
	if err != nil {
		return nil, err
	}
	destStep := destGraph.StepById(move.DestStepId)
	if destStep == nil {
		return e.blocked(item, model.OUTCOME_STEP_GRAPH_MISMATCH,
			fmt.Sprintf("step %s does not belong to graph %s", move.DestStepId, destGraph.Id)), nil
	}
	access := e.permissions.TransferAccess(actor, item, graph, destGraph)
	if !access.Allowed() {
		reasons := make([]string, 0, 3)
		if !access.HasPermission {
			reasons = append(reasons, "missing transfer permission")
		}
		if !access.HasCurrentAccess {
			reasons = append(reasons, "no access to the source graph")
		}
		if !access.CanAccessDestination {
			reasons = append(reasons, "no access to the destination graph")
		}
		result := e.blocked(item, model.OUTCOME_TRANSFER_DENIED, strings.Join(reasons, "; "))
		result.TransferAccess = &access
		return result, nil
	}

	oldStep := graph.StepById(item.CurrentStepId)
	if oldStep == nil {
		return nil, api.NotFoundError{Entity: "step", Id: item.CurrentStepId}
	}
	oldStepId := item.CurrentStepId
	expectedVersion := item.Version
	notices := make([]string, 0)

	// Remap bookings by step name; a step with no counterpart in the
	// destination graph falls back to the destination step itself.
	bookings, err := e.storage.Bookings().GetBookingsByWorkItem(item.Id)
	if err != nil {
		return nil, err
	}
	updates := make([]model.Booking, 0, len(bookings))
	mirrored := make([]model.Booking, 0)
	fallbacks := 0
	for _, b := range bookings {
		srcStep := graph.StepById(b.StepId)
		mappedId := destStep.Id
		if srcStep != nil {
			if match := destGraph.StepByName(srcStep.Name); match != nil {
				mappedId = match.Id
			} else {
				fallbacks++
				logger.Info("no step name match for booking, remapping to destination step",
					zap.String("booking", b.Id), zap.String("step", srcStep.Name))
			}
		}
		b.StepId = mappedId
		updates = append(updates, b)
		if b.MirrorRef != "" {
			mirrored = append(mirrored, b)
		}
	}
	if len(updates) > 0 {
		notices = append(notices, fmt.Sprintf("%d bookings remapped to destination graph", len(updates)))
	}
	if fallbacks > 0 {
		notices = append(notices, fmt.Sprintf("%d bookings had no matching step and were remapped to %q", fallbacks, destStep.Name))
	}

	item.GraphId = destGraph.Id
	item.CurrentStepId = destStep.Id
	item.CurrentStepEnteredAt = e.now()
	e.applyCompletion(item, destStep)

	if item.AssigneeId != "" {
		if !move.PreserveAssignee || !e.assigneeCanAccess(item.AssigneeId, destGraph) {
			notices = append(notices, fmt.Sprintf("assignee %s cleared, no access to destination graph", item.AssigneeId))
			item.AssigneeId = ""
		}
	}

	item.AppendTransferEvent(model.TransferEvent{
		FromGraphId:     graph.Id,
		FromGraphName:   graph.Name,
		FromStepId:      oldStepId,
		FromStepName:    oldStep.Name,
		ToGraphId:       destGraph.Id,
		ToGraphName:     destGraph.Name,
		ToStepId:        destStep.Id,
		ToStepName:      destStep.Name,
		ActorId:         actor.UserId,
		Timestamp:       e.now(),
		Note:            move.Note,
		BookingsTouched: len(updates),
	})
	item.Version++

	record := e.newHistoryRecord(item, oldStepId, destStep.Id, actor.UserId, move.Note, model.HISTORY_TRANSFER)
	err = e.storage.WorkItems().CommitMove(persistence.MoveCommit{
		Item:            item,
		ExpectedVersion: expectedVersion,
		History:         []model.HistoryRecord{record},
		UpdateBookings:  updates,
	})
	if err != nil {
		return nil, err
	}

	// The scheduling subsystem only carries descriptive metadata; the
	// committed move stands even if this update fails.
	for _, b := range mirrored {
		err := e.scheduler.UpdateBookingMetadata(b.MirrorRef, map[string]string{
			"fromGraph":   graph.Name,
			"fromStep":    oldStep.Name,
			"toGraph":     destGraph.Name,
			"toStep":      destStep.Name,
			"transferred": e.now().Format("2006-01-02T15:04:05Z07:00"),
			"actor":       actor.UserId,
		})
		if err != nil {
			logger.Error("error updating scheduler mirror metadata", zap.String("booking", b.Id), zap.Error(err))
			note := fmt.Sprintf("scheduler mirror metadata update failed for booking %s", b.Id)
			if err := e.storage.History().Append(e.newHistoryRecord(item, destStep.Id, destStep.Id, actor.UserId, note, model.HISTORY_COMMENT)); err != nil {
				logger.Error("error appending mirror failure note", zap.String("itemId", item.Id), zap.Error(err))
			}
		}
	}

	logger.Info("work item transferred", zap.String("itemId", item.Id),
		zap.String("fromGraph", graph.Id), zap.String("toGraph", destGraph.Id),
		zap.Int("bookingsTouched", len(updates)), zap.String("actor", actor.UserId))
	analytics.RecordMoveSuccess(item.Id, destGraph.Id, oldStepId, destStep.Id, string(model.HISTORY_TRANSFER))
	e.notifier.Notify(NOTIFY_ITEM_TRANSFERRED, item, actor.UserId)

	return &model.MoveResult{
		Success: true,
		Outcome: model.OUTCOME_OK,
		Message: fmt.Sprintf("transferred to graph %q step %q", destGraph.Name, destStep.Name),
		Notices: notices,
		Item:    item,
	}, nil
}

func (e *Engine) assigneeCanAccess(assigneeId string, destGraph *model.Graph) bool {
	user, err := e.metadata.GetUser(assigneeId)
	if err != nil {
		return false
	}
	if user.OrgId != destGraph.OrgId {
		return false
	}
	if user.Admin {
		return true
	}
	return destGraph.OwnerTeamId != "" && e.metadata.TeamContains(destGraph.OwnerTeamId, assigneeId)
}
