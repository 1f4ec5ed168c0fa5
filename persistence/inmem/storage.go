package inmem

import (
	"sync"

	api "github.com/mohitkumar/stepline/api/v1"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	"github.com/mohitkumar/stepline/util"
)

// Storage keeps every aggregate as encoded bytes behind one mutex, the
// same value-isolation redis gives without the server.
type inmemStorage struct {
	mu       sync.Mutex
	graphs   map[string][]byte
	teams    map[string][]byte
	users    map[string][]byte
	items    map[string][]byte
	history  map[string][][]byte
	bookings map[string][]byte

	graphEncDec   util.EncoderDecoder[model.Graph]
	teamEncDec    util.EncoderDecoder[model.Team]
	userEncDec    util.EncoderDecoder[model.User]
	itemEncDec    util.EncoderDecoder[model.WorkItem]
	historyEncDec util.EncoderDecoder[model.HistoryRecord]
	bookingEncDec util.EncoderDecoder[model.Booking]
}

var _ persistence.Storage = new(inmemStorage)

func NewInmemStorage() *inmemStorage {
	return &inmemStorage{
		graphs:        make(map[string][]byte),
		teams:         make(map[string][]byte),
		users:         make(map[string][]byte),
		items:         make(map[string][]byte),
		history:       make(map[string][][]byte),
		bookings:      make(map[string][]byte),
		graphEncDec:   util.NewJsonEncoderDecoder[model.Graph](),
		teamEncDec:    util.NewJsonEncoderDecoder[model.Team](),
		userEncDec:    util.NewJsonEncoderDecoder[model.User](),
		itemEncDec:    util.NewJsonEncoderDecoder[model.WorkItem](),
		historyEncDec: util.NewJsonEncoderDecoder[model.HistoryRecord](),
		bookingEncDec: util.NewJsonEncoderDecoder[model.Booking](),
	}
}

func (s *inmemStorage) Metadata() persistence.MetadataStorage {
	return s
}

func (s *inmemStorage) WorkItems() persistence.WorkItemStorage {
	return s
}

func (s *inmemStorage) History() persistence.HistoryStorage {
	return s
}

func (s *inmemStorage) Bookings() persistence.BookingStorage {
	return s
}

func (s *inmemStorage) SaveGraph(g model.Graph) error {
	data, err := s.graphEncDec.Encode(g)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[g.Id] = data
	return nil
}

func (s *inmemStorage) DeleteGraph(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[id]; !ok {
		return api.NotFoundError{Entity: "graph", Id: id}
	}
	delete(s.graphs, id)
	return nil
}

func (s *inmemStorage) GetGraph(id string) (*model.Graph, error) {
	s.mu.Lock()
	data, ok := s.graphs[id]
	s.mu.Unlock()
	if !ok {
		return nil, api.NotFoundError{Entity: "graph", Id: id}
	}
	return s.graphEncDec.Decode(data)
}

func (s *inmemStorage) ListGraphs(orgId string) ([]model.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	graphs := make([]model.Graph, 0)
	for _, data := range s.graphs {
		g, err := s.graphEncDec.Decode(data)
		if err != nil {
			return nil, err
		}
		if g.OrgId == orgId {
			graphs = append(graphs, *g)
		}
	}
	return graphs, nil
}

func (s *inmemStorage) SaveTeam(t model.Team) error {
	data, err := s.teamEncDec.Encode(t)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.Id] = data
	return nil
}

func (s *inmemStorage) GetTeam(id string) (*model.Team, error) {
	s.mu.Lock()
	data, ok := s.teams[id]
	s.mu.Unlock()
	if !ok {
		return nil, api.NotFoundError{Entity: "team", Id: id}
	}
	return s.teamEncDec.Decode(data)
}

func (s *inmemStorage) ListTeams(orgId string) ([]model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	teams := make([]model.Team, 0)
	for _, data := range s.teams {
		t, err := s.teamEncDec.Decode(data)
		if err != nil {
			return nil, err
		}
		if t.OrgId == orgId {
			teams = append(teams, *t)
		}
	}
	return teams, nil
}

func (s *inmemStorage) SaveUser(u model.User) error {
	data, err := s.userEncDec.Encode(u)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Id] = data
	return nil
}

func (s *inmemStorage) GetUser(id string) (*model.User, error) {
	s.mu.Lock()
	data, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		return nil, api.NotFoundError{Entity: "user", Id: id}
	}
	return s.userEncDec.Decode(data)
}

func (s *inmemStorage) GetWorkItem(id string) (*model.WorkItem, error) {
	s.mu.Lock()
	data, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return nil, api.NotFoundError{Entity: "work item", Id: id}
	}
	return s.itemEncDec.Decode(data)
}

func (s *inmemStorage) DeleteWorkItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	delete(s.history, id)
	return nil
}

func (s *inmemStorage) CommitMove(commit persistence.MoveCommit) error {
	itemData, err := s.itemEncDec.Encode(*commit.Item)
	if err != nil {
		return err
	}
	historyData := make([][]byte, 0, len(commit.History))
	for _, record := range commit.History {
		data, err := s.historyEncDec.Encode(record)
		if err != nil {
			return err
		}
		historyData = append(historyData, data)
	}
	bookingData := make(map[string][]byte, len(commit.UpdateBookings))
	for _, b := range commit.UpdateBookings {
		data, err := s.bookingEncDec.Encode(b)
		if err != nil {
			return err
		}
		bookingData[b.Id] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, exists := s.items[commit.Item.Id]
	if commit.ExpectedVersion == 0 {
		if exists {
			return api.ConflictError{Entity: "work item", Id: commit.Item.Id}
		}
	} else {
		if !exists {
			return api.NotFoundError{Entity: "work item", Id: commit.Item.Id}
		}
		current, err := s.itemEncDec.Decode(stored)
		if err != nil {
			return err
		}
		if current.Version != commit.ExpectedVersion {
			return api.ConflictError{Entity: "work item", Id: commit.Item.Id}
		}
	}
	s.items[commit.Item.Id] = itemData
	s.history[commit.Item.Id] = append(s.history[commit.Item.Id], historyData...)
	for _, id := range commit.DeleteBookings {
		delete(s.bookings, id)
	}
	for id, data := range bookingData {
		s.bookings[id] = data
	}
	return nil
}

func (s *inmemStorage) Append(record model.HistoryRecord) error {
	data, err := s.historyEncDec.Encode(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[record.WorkItemId] = append(s.history[record.WorkItemId], data)
	return nil
}

func (s *inmemStorage) GetByWorkItem(workItemId string) ([]model.HistoryRecord, error) {
	s.mu.Lock()
	rows := s.history[workItemId]
	copied := make([][]byte, len(rows))
	copy(copied, rows)
	s.mu.Unlock()
	records := make([]model.HistoryRecord, 0, len(copied))
	for _, row := range copied {
		record, err := s.historyEncDec.Decode(row)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (s *inmemStorage) DeleteByWorkItem(workItemId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, workItemId)
	return nil
}

func (s *inmemStorage) SaveBooking(b model.Booking) error {
	data, err := s.bookingEncDec.Encode(b)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.Id] = data
	return nil
}

func (s *inmemStorage) GetBooking(id string) (*model.Booking, error) {
	s.mu.Lock()
	data, ok := s.bookings[id]
	s.mu.Unlock()
	if !ok {
		return nil, api.NotFoundError{Entity: "booking", Id: id}
	}
	return s.bookingEncDec.Decode(data)
}

func (s *inmemStorage) DeleteBooking(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return api.NotFoundError{Entity: "booking", Id: id}
	}
	delete(s.bookings, id)
	return nil
}

func (s *inmemStorage) GetBookingsByWorkItem(workItemId string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings := make([]model.Booking, 0)
	for _, data := range s.bookings {
		b, err := s.bookingEncDec.Decode(data)
		if err != nil {
			return nil, err
		}
		if b.WorkItemId == workItemId {
			bookings = append(bookings, *b)
		}
	}
	return bookings, nil
}
