package persistence

import (
	"fmt"

	"github.com/mohitkumar/stepline/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type MetadataStorage interface {
	SaveGraph(g model.Graph) error
	DeleteGraph(id string) error
	GetGraph(id string) (*model.Graph, error)
	ListGraphs(orgId string) ([]model.Graph, error)
	SaveTeam(t model.Team) error
	GetTeam(id string) (*model.Team, error)
	ListTeams(orgId string) ([]model.Team, error)
	SaveUser(u model.User) error
	GetUser(id string) (*model.User, error)
}

// MoveCommit is the unit of work for one move operation. The work item
// update, history appends and booking mutations are applied together or
// not at all. ExpectedVersion 0 means the item must not exist yet.
type MoveCommit struct {
	Item            *model.WorkItem
	ExpectedVersion int64
	History         []model.HistoryRecord
	DeleteBookings  []string
	UpdateBookings  []model.Booking
}

type WorkItemStorage interface {
	GetWorkItem(id string) (*model.WorkItem, error)
	DeleteWorkItem(id string) error
	CommitMove(commit MoveCommit) error
}

type HistoryStorage interface {
	Append(record model.HistoryRecord) error
	GetByWorkItem(workItemId string) ([]model.HistoryRecord, error)
	DeleteByWorkItem(workItemId string) error
}

type BookingStorage interface {
	SaveBooking(b model.Booking) error
	GetBooking(id string) (*model.Booking, error)
	DeleteBooking(id string) error
	GetBookingsByWorkItem(workItemId string) ([]model.Booking, error)
}

type Storage interface {
	Metadata() MetadataStorage
	WorkItems() WorkItemStorage
	History() HistoryStorage
	Bookings() BookingStorage
}
