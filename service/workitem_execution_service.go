package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	api "github.com/mohitkumar/stepline/api/v1"
	"github.com/mohitkumar/stepline/engine"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/metadata"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	"go.uber.org/zap"
)

type WorkItemExecutionService struct {
	metadata metadata.MetadataService
	storage  persistence.Storage
	engine   *engine.Engine
	now      func() time.Time
	newId    func() string
}

func NewWorkItemExecutionService(metadataService metadata.MetadataService, storage persistence.Storage, eng *engine.Engine) *WorkItemExecutionService {
	return &WorkItemExecutionService{
		metadata: metadataService,
		storage:  storage,
		engine:   eng,
		now:      time.Now,
		newId:    func() string { return uuid.New().String() },
	}
}

func (s *WorkItemExecutionService) CreateWorkItem(actor model.ActorContext, req model.WorkItemCreateRequest) (*model.WorkItem, error) {
	graph, err := s.metadata.GetGraph(req.GraphId)
	if err != nil {
		return nil, err
	}
	if !graph.Active {
		return nil, api.ValidationError{Message: fmt.Sprintf("graph %s is not active", graph.Id)}
	}
	if actor.OrgId != graph.OrgId {
		return nil, api.ValidationError{Message: "graph belongs to a different organization"}
	}
	start := graph.StartStep()
	priority := req.Priority
	if priority == 0 {
		priority = model.PRIORITY_MEDIUM
	}
	payload := req.Payload
	if payload == nil {
		payload = make(map[string]any)
	}
	item := &model.WorkItem{
		Id:                   s.newId(),
		GraphId:              graph.Id,
		CurrentStepId:        start.Id,
		Title:                req.Title,
		Payload:              payload,
		Priority:             priority,
		CreatorId:            actor.UserId,
		CurrentStepEnteredAt: s.now(),
		Version:              1,
	}
	record := model.HistoryRecord{
		Id:         s.newId(),
		WorkItemId: item.Id,
		ToStepId:   start.Id,
		ActorId:    actor.UserId,
		Note:       "created",
		Kind:       model.HISTORY_NORMAL,
		Snapshot:   model.CopyPayload(item.Payload),
		Timestamp:  s.now(),
	}
	err = s.storage.WorkItems().CommitMove(persistence.MoveCommit{
		Item:    item,
		History: []model.HistoryRecord{record},
	})
	if err != nil {
		return nil, err
	}
	logger.Info("work item created", zap.String("itemId", item.Id), zap.String("graphId", graph.Id), zap.String("step", start.Id))
	return item, nil
}

func (s *WorkItemExecutionService) ExecuteMove(actor model.ActorContext, itemId string, move model.Move) (*model.MoveResult, error) {
	return s.engine.Apply(actor, itemId, move)
}

func (s *WorkItemExecutionService) GetWorkItem(itemId string) (*model.WorkItem, error) {
	return s.storage.WorkItems().GetWorkItem(itemId)
}

func (s *WorkItemExecutionService) GetHistory(itemId string) ([]model.HistoryRecord, error) {
	return s.storage.History().GetByWorkItem(itemId)
}

func (s *WorkItemExecutionService) BackwardTargets(itemId string) ([]model.Step, error) {
	item, err := s.storage.WorkItems().GetWorkItem(itemId)
	if err != nil {
		return nil, err
	}
	graph, err := s.metadata.GetGraph(item.GraphId)
	if err != nil {
		return nil, err
	}
	return s.engine.BackwardTargets(item, graph)
}

func (s *WorkItemExecutionService) Assign(actor model.ActorContext, itemId string, assigneeId string) (*model.WorkItem, error) {
	item, err := s.storage.WorkItems().GetWorkItem(itemId)
	if err != nil {
		return nil, err
	}
	expectedVersion := item.Version
	item.AssigneeId = assigneeId
	item.Version++
	err = s.storage.WorkItems().CommitMove(persistence.MoveCommit{
		Item:            item,
		ExpectedVersion: expectedVersion,
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *WorkItemExecutionService) SetPriority(actor model.ActorContext, itemId string, priority model.Priority) (*model.WorkItem, error) {
	if priority < model.PRIORITY_LOW || priority > model.PRIORITY_CRITICAL {
		return nil, api.ValidationError{Message: fmt.Sprintf("invalid priority %d", priority)}
	}
	item, err := s.storage.WorkItems().GetWorkItem(itemId)
	if err != nil {
		return nil, err
	}
	expectedVersion := item.Version
	item.Priority = priority
	item.Version++
	err = s.storage.WorkItems().CommitMove(persistence.MoveCommit{
		Item:            item,
		ExpectedVersion: expectedVersion,
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteWorkItem is an administrative action, not part of the move
// algorithms; history and bookings go with the item.
func (s *WorkItemExecutionService) DeleteWorkItem(actor model.ActorContext, itemId string) error {
	if !actor.Admin {
		return api.ValidationError{Message: "only organization admins can delete work items"}
	}
	bookings, err := s.storage.Bookings().GetBookingsByWorkItem(itemId)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if err := s.storage.Bookings().DeleteBooking(b.Id); err != nil {
			return err
		}
	}
	if err := s.storage.History().DeleteByWorkItem(itemId); err != nil {
		return err
	}
	return s.storage.WorkItems().DeleteWorkItem(itemId)
}

func (s *WorkItemExecutionService) CreateBooking(actor model.ActorContext, itemId string, req model.BookingCreateRequest) (*model.Booking, error) {
	item, err := s.storage.WorkItems().GetWorkItem(itemId)
	if err != nil {
		return nil, err
	}
	graph, err := s.metadata.GetGraph(item.GraphId)
	if err != nil {
		return nil, err
	}
	if graph.StepById(req.StepId) == nil {
		return nil, api.ValidationError{Message: fmt.Sprintf("step %s does not belong to graph %s", req.StepId, graph.Id)}
	}
	booking := model.Booking{
		Id:         s.newId(),
		WorkItemId: item.Id,
		StepId:     req.StepId,
		TeamId:     req.TeamId,
		Resource:   req.Resource,
		CreatedAt:  s.now(),
	}
	if err := s.storage.Bookings().SaveBooking(booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *WorkItemExecutionService) CompleteBooking(bookingId string) (*model.Booking, error) {
	booking, err := s.storage.Bookings().GetBooking(bookingId)
	if err != nil {
		return nil, err
	}
	booking.Completed = true
	if err := s.storage.Bookings().SaveBooking(*booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *WorkItemExecutionService) DeleteBooking(bookingId string) error {
	return s.storage.Bookings().DeleteBooking(bookingId)
}
