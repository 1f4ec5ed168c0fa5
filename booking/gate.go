package booking

import (
	"github.com/mohitkumar/stepline/engine"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
)

// StorageBookingGate answers booking-gate queries from the booking store.
type StorageBookingGate struct {
	bookings persistence.BookingStorage
}

var _ engine.BookingGate = new(StorageBookingGate)

func NewStorageBookingGate(bookings persistence.BookingStorage) *StorageBookingGate {
	return &StorageBookingGate{bookings: bookings}
}

func (g *StorageBookingGate) BookingsForStep(workItemId string, stepId string) ([]model.Booking, error) {
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
