package engine

import (
	"time"

	"github.com/google/uuid"
	api "github.com/mohitkumar/stepline/api/v1"
	"github.com/mohitkumar/stepline/metadata"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
)

// Engine applies validated moves to work items. Each move commits the
// item mutation, its history records and any booking changes as one
// storage transaction.
type Engine struct {
	metadata    metadata.MetadataService
	storage     persistence.Storage
	permissions PermissionGate
	bookings    BookingGate
	scheduler   SchedulerClient
	notifier    Notifier
	now         func() time.Time
	newId       func() string
}

func New(metadataService metadata.MetadataService, storage persistence.Storage,
	permissions PermissionGate, bookings BookingGate, scheduler SchedulerClient, notifier Notifier) *Engine {
	return &Engine{
		metadata:    metadataService,
		storage:     storage,
		permissions: permissions,
		bookings:    bookings,
		scheduler:   scheduler,
		notifier:    notifier,
		now:         time.Now,
		newId:       func() string { return uuid.New().String() },
	}
}

func (e *Engine) Apply(actor model.ActorContext, itemId string, move model.Move) (*model.MoveResult, error) {
	item, err := e.storage.WorkItems().GetWorkItem(itemId)
	if err != nil {
		return nil, err
	}
	graph, err := e.metadata.GetGraph(item.GraphId)
	if err != nil {
		return nil, err
	}
	switch move.Type {
	case model.MOVE_FORWARD:
		return e.executeForward(actor, item, graph, move)
	case model.MOVE_BACKWARD:
		return e.moveBackward(actor, item, graph, move)
	case model.MOVE_TRANSFER:
		return e.transfer(actor, item, graph, move)
	}
	return nil, api.ValidationError{Message: "unknown move type"}
}

func (e *Engine) newHistoryRecord(item *model.WorkItem, fromStepId string, toStepId string,
	actorId string, note string, kind model.HistoryKind) model.HistoryRecord {
	return model.HistoryRecord{
		Id:         e.newId(),
		WorkItemId: item.Id,
		FromStepId: fromStepId,
		ToStepId:   toStepId,
		ActorId:    actorId,
		Note:       note,
		Kind:       kind,
		Snapshot:   model.CopyPayload(item.Payload),
		Timestamp:  e.now(),
	}
}

// applyCompletion keeps completed == currentStep.Terminal on every
// mutation, resetting in both directions.
func (e *Engine) applyCompletion(item *model.WorkItem, step *model.Step) {
	if step.Terminal {
		if !item.Completed {
			item.Completed = true
			now := e.now()
			item.CompletedAt = &now
		}
	} else if item.Completed {
		item.Completed = false
		item.CompletedAt = nil
	}
}
