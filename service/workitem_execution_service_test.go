package service

import (
	"fmt"
	"testing"
	"time"

	api "github.com/mohitkumar/stepline/api/v1"
	"github.com/mohitkumar/stepline/booking"
	"github.com/mohitkumar/stepline/engine"
	"github.com/mohitkumar/stepline/metadata"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	"github.com/mohitkumar/stepline/persistence/inmem"
	"github.com/stretchr/testify/require"
)

type noopNotifier struct{}

func (noopNotifier) Notify(kind engine.NotificationKind, item *model.WorkItem, actorId string) {}

func newTestService(t *testing.T) (*WorkItemExecutionService, persistence.Storage) {
	t.Helper()
	storage := inmem.NewInmemStorage()
	metadataService := metadata.NewMetadataService(storage.Metadata())
	eng := engine.New(metadataService, storage, engine.NewDefaultPermissionGate(metadataService),
		booking.NewStorageBookingGate(storage.Bookings()), booking.NewLoggingSchedulerClient(), noopNotifier{})
	service := NewWorkItemExecutionService(metadataService, storage, eng)
	service.now = func() time.Time { return time.Date(2024, time.March, 6, 11, 0, 0, 0, time.UTC) }
	seq := 0
	service.newId = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	_, err := metadataService.SaveGraph(model.Graph{
		Id:     "g1",
		OrgId:  "org1",
		Name:   "intake",
		Active: true,
		Steps: []model.Step{
			{Id: "new", Name: "New", Order: 1},
			{Id: "done", Name: "Done", Order: 2, Terminal: true},
		},
		Transitions: []model.Transition{
			{Id: "t1", FromStepId: "new", ToStepId: "done", Label: "finish", PermissionLevel: model.PERMISSION_ANY, Active: true},
		},
	})
	require.NoError(t, err)
	return service, storage
}

func orgActor(userId string) model.ActorContext {
	return model.ActorContext{UserId: userId, OrgId: "org1"}
}

func TestCreateWorkItem(t *testing.T) {
	service, storage := newTestService(t)

	item, err := service.CreateWorkItem(orgActor("creator1"), model.WorkItemCreateRequest{
		GraphId: "g1",
		Title:   "first item",
	})
	require.NoError(t, err)
	require.Equal(t, "new", item.CurrentStepId)
	require.Equal(t, model.PRIORITY_MEDIUM, item.Priority)
	require.Equal(t, "creator1", item.CreatorId)
	require.Equal(t, int64(1), item.Version)
	require.False(t, item.Completed)

	records, err := storage.History().GetByWorkItem(item.Id)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Empty(t, records[0].FromStepId)
	require.Equal(t, "new", records[0].ToStepId)
	require.Equal(t, "creator1", records[0].ActorId)
}

func TestCreateWorkItemRejections(t *testing.T) {
	scenarios := map[string]struct {
		actor   model.ActorContext
		request model.WorkItemCreateRequest
	}{
		"unknown graph":  {actor: orgActor("u1"), request: model.WorkItemCreateRequest{GraphId: "ghost"}},
		"org mismatch":   {actor: model.ActorContext{UserId: "u1", OrgId: "org2"}, request: model.WorkItemCreateRequest{GraphId: "g1"}},
		"inactive graph": {actor: orgActor("u1"), request: model.WorkItemCreateRequest{GraphId: "g-off"}},
	}
	for name, scenario := range scenarios {
		t.Run(name, func(t *testing.T) {
			service, _ := newTestService(t)
			if scenario.request.GraphId == "g-off" {
				_, err := service.metadata.SaveGraph(model.Graph{
					Id: "g-off", OrgId: "org1", Name: "parked", Active: false,
					Steps: []model.Step{{Id: "s1", Name: "Only", Order: 1}},
				})
				require.NoError(t, err)
			}
			_, err := service.CreateWorkItem(scenario.actor, scenario.request)
			require.Error(t, err)
		})
	}
}

func TestExecuteMoveThroughService(t *testing.T) {
	service, _ := newTestService(t)
	item, err := service.CreateWorkItem(orgActor("creator1"), model.WorkItemCreateRequest{GraphId: "g1", Title: "x"})
	require.NoError(t, err)

	result, err := service.ExecuteMove(orgActor("creator1"), item.Id, model.ForwardMove("t1", ""))
	require.NoError(t, err)
	require.True(t, result.Success)

	reloaded, err := service.GetWorkItem(item.Id)
	require.NoError(t, err)
	require.Equal(t, "done", reloaded.CurrentStepId)
	require.True(t, reloaded.Completed)

	targets, err := service.BackwardTargets(item.Id)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	require.Equal(t, "new", targets[0].Id)
}

func TestAssignAndPriorityBumpVersion(t *testing.T) {
	service, _ := newTestService(t)
	item, err := service.CreateWorkItem(orgActor("creator1"), model.WorkItemCreateRequest{GraphId: "g1", Title: "x"})
	require.NoError(t, err)

	assigned, err := service.Assign(orgActor("boss"), item.Id, "worker1")
	require.NoError(t, err)
	require.Equal(t, "worker1", assigned.AssigneeId)
	require.Equal(t, int64(2), assigned.Version)

	prioritized, err := service.SetPriority(orgActor("boss"), item.Id, model.PRIORITY_CRITICAL)
	require.NoError(t, err)
	require.Equal(t, model.PRIORITY_CRITICAL, prioritized.Priority)
	require.Equal(t, int64(3), prioritized.Version)

	_, err = service.SetPriority(orgActor("boss"), item.Id, 9)
	require.IsType(t, api.ValidationError{}, err)
}

func TestDeleteWorkItem(t *testing.T) {
	service, storage := newTestService(t)
	item, err := service.CreateWorkItem(orgActor("creator1"), model.WorkItemCreateRequest{GraphId: "g1", Title: "x"})
	require.NoError(t, err)
	_, err = service.CreateBooking(orgActor("creator1"), item.Id, model.BookingCreateRequest{StepId: "new"})
	require.NoError(t, err)

	err = service.DeleteWorkItem(orgActor("pleb"), item.Id)
	require.IsType(t, api.ValidationError{}, err)

	err = service.DeleteWorkItem(model.ActorContext{UserId: "boss", OrgId: "org1", Admin: true}, item.Id)
	require.NoError(t, err)

	_, err = service.GetWorkItem(item.Id)
	require.IsType(t, api.NotFoundError{}, err)
	records, err := storage.History().GetByWorkItem(item.Id)
	require.NoError(t, err)
	require.Empty(t, records)
	bookings, err := storage.Bookings().GetBookingsByWorkItem(item.Id)
	require.NoError(t, err)
	require.Empty(t, bookings)
}

func TestBookingLifecycle(t *testing.T) {
	service, _ := newTestService(t)
	item, err := service.CreateWorkItem(orgActor("creator1"), model.WorkItemCreateRequest{GraphId: "g1", Title: "x"})
	require.NoError(t, err)

	_, err = service.CreateBooking(orgActor("creator1"), item.Id, model.BookingCreateRequest{StepId: "ghost"})
	require.IsType(t, api.ValidationError{}, err)

	created, err := service.CreateBooking(orgActor("creator1"), item.Id, model.BookingCreateRequest{
		StepId: "new", TeamId: "team1", Resource: "room-a",
	})
	require.NoError(t, err)
	require.False(t, created.Completed)
	require.Equal(t, "room-a", created.Resource)

	completed, err := service.CompleteBooking(created.Id)
	require.NoError(t, err)
	require.True(t, completed.Completed)

	require.NoError(t, service.DeleteBooking(created.Id))
	_, err = service.CompleteBooking(created.Id)
	require.IsType(t, api.NotFoundError{}, err)
}
