package redis

import (
	"github.com/mohitkumar/stepline/persistence"
)

type redisStorage struct {
	metadata  *redisMetadataStorage
	workItems *redisWorkItemDao
	history   *redisHistoryDao
	bookings  *redisBookingDao
}

var _ persistence.Storage = new(redisStorage)

func NewRedisStorage(conf Config) *redisStorage {
	dao := newBaseDao(conf)
	return &redisStorage{
		metadata:  NewRedisMetadataStorage(dao),
		workItems: NewRedisWorkItemDao(dao),
		history:   NewRedisHistoryDao(dao),
		bookings:  NewRedisBookingDao(dao),
	}
}

func (r *redisStorage) Metadata() persistence.MetadataStorage {
	return r.metadata
}

func (r *redisStorage) WorkItems() persistence.WorkItemStorage {
	return r.workItems
}

func (r *redisStorage) History() persistence.HistoryStorage {
	return r.history
}

func (r *redisStorage) Bookings() persistence.BookingStorage {
	return r.bookings
}
