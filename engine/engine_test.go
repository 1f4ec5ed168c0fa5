package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/mohitkumar/stepline/metadata"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	"github.com/mohitkumar/stepline/persistence/inmem"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	engine    *Engine
	storage   persistence.Storage
	metadata  metadata.MetadataService
	scheduler *recordingScheduler
	notifier  *recordingNotifier
	gate      *DefaultPermissionGate
	now       time.Time
}

type storageBookingGate struct {
	bookings persistence.BookingStorage
}

func (g *storageBookingGate) BookingsForStep(workItemId string, stepId string) ([]model.Booking, error) {
	all, err := g.bookings.GetBookingsByWorkItem(workItemId)
	if err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0, len(all))
	for _, b := range all {
		if b.StepId == stepId {
			out = append(out, b)
		}
	}
	return out, nil
}

type recordingScheduler struct {
	updates map[string]map[string]string
	fail    bool
}

func (s *recordingScheduler) UpdateBookingMetadata(mirrorRef string, metadata map[string]string) error {
	if s.fail {
		return fmt.Errorf("scheduler unreachable")
	}
	if s.updates == nil {
		s.updates = make(map[string]map[string]string)
	}
	s.updates[mirrorRef] = metadata
	return nil
}

type recordingNotifier struct {
	kinds []NotificationKind
}

func (n *recordingNotifier) Notify(kind NotificationKind, item *model.WorkItem, actorId string) {
	n.kinds = append(n.kinds, kind)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	storage := inmem.NewInmemStorage()
	metadataService := metadata.NewMetadataService(storage.Metadata())
	gate := NewDefaultPermissionGate(metadataService)
	scheduler := &recordingScheduler{}
	notifier := &recordingNotifier{}
	eng := New(metadataService, storage, gate, &storageBookingGate{bookings: storage.Bookings()},
		scheduler, notifier)
	env := &testEnv{
		engine:    eng,
		storage:   storage,
		metadata:  metadataService,
		scheduler: scheduler,
		notifier:  notifier,
		gate:      gate,
		now:       time.Date(2024, time.March, 6, 11, 0, 0, 0, time.UTC),
	}
	eng.now = func() time.Time { return env.now }
	seq := 0
	eng.newId = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	gate.now = eng.now
	return env
}

func (env *testEnv) saveGraph(t *testing.T, g model.Graph) *model.Graph {
	t.Helper()
	saved, err := env.metadata.SaveGraph(g)
	require.NoError(t, err)
	return saved
}

// three step graph: New(1) -> Review(2, booking, team1) -> Done(3, terminal)
func reviewGraph() model.Graph {
	return model.Graph{
		Id:          "g1",
		OrgId:       "org1",
		Name:        "intake",
		OwnerTeamId: "team1",
		Active:      true,
		Steps: []model.Step{
			{Id: "new", Name: "New", Order: 1},
			{Id: "review", Name: "Review", Order: 2, RequiresBooking: true, AssignedTeamId: "team1"},
			{Id: "done", Name: "Done", Order: 3, Terminal: true},
		},
		Transitions: []model.Transition{
			{Id: "t1", FromStepId: "new", ToStepId: "review", Label: "start review", PermissionLevel: model.PERMISSION_ANY, Active: true},
			{Id: "t2", FromStepId: "review", ToStepId: "done", Label: "finish", PermissionLevel: model.PERMISSION_ANY, Active: true},
		},
	}
}

func (env *testEnv) createItem(t *testing.T, graphId string, stepId string, creator string) *model.WorkItem {
	t.Helper()
	item := &model.WorkItem{
		Id:                   "item-" + stepId,
		GraphId:              graphId,
		CurrentStepId:        stepId,
		Title:                "test item",
		Payload:              map[string]any{"title": "test item"},
		Priority:             model.PRIORITY_MEDIUM,
		CreatorId:            creator,
		CurrentStepEnteredAt: env.now,
		Version:              1,
	}
	record := model.HistoryRecord{
		Id:         "h-create-" + item.Id,
		WorkItemId: item.Id,
		ToStepId:   stepId,
		ActorId:    creator,
		Kind:       model.HISTORY_NORMAL,
		Timestamp:  env.now,
	}
	err := env.storage.WorkItems().CommitMove(persistence.MoveCommit{
		Item:    item,
		History: []model.HistoryRecord{record},
	})
	require.NoError(t, err)
	return item
}

func (env *testEnv) assign(t *testing.T, item *model.WorkItem, assigneeId string) {
	t.Helper()
	expected := item.Version
	item.AssigneeId = assigneeId
	item.Version++
	err := env.storage.WorkItems().CommitMove(persistence.MoveCommit{Item: item, ExpectedVersion: expected})
	require.NoError(t, err)
}

func (env *testEnv) addBooking(t *testing.T, b model.Booking) {
	t.Helper()
	require.NoError(t, env.storage.Bookings().SaveBooking(b))
}

func actor(userId string) model.ActorContext {
	return model.ActorContext{UserId: userId, OrgId: "org1"}
}

func admin(userId string) model.ActorContext {
	return model.ActorContext{UserId: userId, OrgId: "org1", Admin: true}
}

func (env *testEnv) history(t *testing.T, itemId string) []model.HistoryRecord {
	t.Helper()
	records, err := env.storage.History().GetByWorkItem(itemId)
	require.NoError(t, err)
	return records
}

func (env *testEnv) reload(t *testing.T, itemId string) *model.WorkItem {
	t.Helper()
	item, err := env.storage.WorkItems().GetWorkItem(itemId)
	require.NoError(t, err)
	return item
}

func requireHistoryChain(t *testing.T, records []model.HistoryRecord) {
	t.Helper()
	prevTo := ""
	for i, record := range records {
		if record.Kind == model.HISTORY_COMMENT {
			continue
		}
		if i == 0 {
			require.Empty(t, record.FromStepId)
		} else {
			require.Equal(t, prevTo, record.FromStepId)
		}
		prevTo = record.ToStepId
	}
}
