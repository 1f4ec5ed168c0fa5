package redis

import (
	"context"

	rd "github.com/go-redis/redis/v9"
	api "github.com/mohitkumar/stepline/api/v1"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	"github.com/mohitkumar/stepline/util"
	"go.uber.org/zap"
)

const BOOKING_KEY string = "BOOKING"
const BOOKING_INDEX_KEY string = "ITEM_BOOKINGS"

var _ persistence.BookingStorage = new(redisBookingDao)

type redisBookingDao struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.Booking]
}

func NewRedisBookingDao(dao *baseDao) *redisBookingDao {
	return &redisBookingDao{
		baseDao:        dao,
		encoderDecoder: util.NewJsonEncoderDecoder[model.Booking](),
	}
}

func (rb *redisBookingDao) SaveBooking(b model.Booking) error {
	ctx := context.Background()
	data, err := rb.encoderDecoder.Encode(b)
	if err != nil {
		return err
	}
	key := rb.baseDao.getNamespaceKey(BOOKING_KEY)
	if err := rb.redisClient.HSet(ctx, key, []string{b.Id, string(data)}).Err(); err != nil {
		logger.Error("error in saving booking", zap.String("booking", b.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	indexKey := rb.baseDao.getNamespaceKey(BOOKING_INDEX_KEY, b.WorkItemId)
	if err := rb.redisClient.SAdd(ctx, indexKey, b.Id).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rb *redisBookingDao) GetBooking(id string) (*model.Booking, error) {
	key := rb.baseDao.getNamespaceKey(BOOKING_KEY)
	ctx := context.Background()
	bookingStr, err := rb.redisClient.HGet(ctx, key, id).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, api.NotFoundError{Entity: "booking", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rb.encoderDecoder.Decode([]byte(bookingStr))
}

func (rb *redisBookingDao) DeleteBooking(id string) error {
	booking, err := rb.GetBooking(id)
	if err != nil {
		return err
	}
	key := rb.baseDao.getNamespaceKey(BOOKING_KEY)
	ctx := context.Background()
	if err := rb.redisClient.HDel(ctx, key, id).Err(); err != nil {
		logger.Error("error in deleting booking", zap.String("booking", id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	indexKey := rb.baseDao.getNamespaceKey(BOOKING_INDEX_KEY, booking.WorkItemId)
	if err := rb.redisClient.SRem(ctx, indexKey, id).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rb *redisBookingDao) GetBookingsByWorkItem(workItemId string) ([]model.Booking, error) {
	indexKey := rb.baseDao.getNamespaceKey(BOOKING_INDEX_KEY, workItemId)
	ctx := context.Background()
	ids, err := rb.redisClient.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	bookings := make([]model.Booking, 0, len(ids))
	for _, id := range ids {
		booking, err := rb.GetBooking(id)
		if err != nil {
			if _, ok := err.(api.NotFoundError); ok {
				continue
			}
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, nil
}
