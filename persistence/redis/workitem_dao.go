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

const ITEM_KEY string = "ITEM"

var _ persistence.WorkItemStorage = new(redisWorkItemDao)

type redisWorkItemDao struct {
	*baseDao
	encoderDecoder        util.EncoderDecoder[model.WorkItem]
	historyEncoderDecoder util.EncoderDecoder[model.HistoryRecord]
	bookingEncoderDecoder util.EncoderDecoder[model.Booking]
}

func NewRedisWorkItemDao(dao *baseDao) *redisWorkItemDao {
	return &redisWorkItemDao{
		baseDao:               dao,
		encoderDecoder:        util.NewJsonEncoderDecoder[model.WorkItem](),
		historyEncoderDecoder: util.NewJsonEncoderDecoder[model.HistoryRecord](),
		bookingEncoderDecoder: util.NewJsonEncoderDecoder[model.Booking](),
	}
}

func (rw *redisWorkItemDao) GetWorkItem(id string) (*model.WorkItem, error) {
	key := rw.baseDao.getNamespaceKey(ITEM_KEY, id)
	ctx := context.Background()
	itemStr, err := rw.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, api.NotFoundError{Entity: "work item", Id: id}
		}
		logger.Error("error in getting work item", zap.String("itemId", id), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rw.encoderDecoder.Decode([]byte(itemStr))
}

func (rw *redisWorkItemDao) DeleteWorkItem(id string) error {
	key := rw.baseDao.getNamespaceKey(ITEM_KEY, id)
	ctx := context.Background()
	if err := rw.redisClient.Del(ctx, key).Err(); err != nil {
		logger.Error("error in deleting work item", zap.String("itemId", id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if err := rw.redisClient.Del(ctx, rw.baseDao.getNamespaceKey(HISTORY_KEY, id)).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

// CommitMove applies the whole unit of work under an optimistic watch on
// the item key. A concurrent writer moves the stored version and the
// commit fails with ConflictError instead of clobbering it.
func (rw *redisWorkItemDao) CommitMove(commit persistence.MoveCommit) error {
	key := rw.baseDao.getNamespaceKey(ITEM_KEY, commit.Item.Id)
	ctx := context.Background()
	itemData, err := rw.encoderDecoder.Encode(*commit.Item)
	if err != nil {
		return err
	}
	txf := func(tx *rd.Tx) error {
		storedStr, err := tx.Get(ctx, key).Result()
		if err != nil && err != rd.Nil {
			return persistence.StorageLayerError{Message: err.Error()}
		}
		if commit.ExpectedVersion == 0 {
			if err != rd.Nil {
				return api.ConflictError{Entity: "work item", Id: commit.Item.Id}
			}
		} else {
			if err == rd.Nil {
				return api.NotFoundError{Entity: "work item", Id: commit.Item.Id}
			}
			stored, err := rw.encoderDecoder.Decode([]byte(storedStr))
			if err != nil {
				return err
			}
			if stored.Version != commit.ExpectedVersion {
				return api.ConflictError{Entity: "work item", Id: commit.Item.Id}
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
			pipe.Set(ctx, key, itemData, 0)
			historyKey := rw.baseDao.getNamespaceKey(HISTORY_KEY, commit.Item.Id)
			for _, record := range commit.History {
				recordData, err := rw.historyEncoderDecoder.Encode(record)
				if err != nil {
					return err
				}
				pipe.RPush(ctx, historyKey, recordData)
			}
			bookingKey := rw.baseDao.getNamespaceKey(BOOKING_KEY)
			indexKey := rw.baseDao.getNamespaceKey(BOOKING_INDEX_KEY, commit.Item.Id)
			for _, id := range commit.DeleteBookings {
				pipe.HDel(ctx, bookingKey, id)
				pipe.SRem(ctx, indexKey, id)
			}
			for _, b := range commit.UpdateBookings {
				bookingData, err := rw.bookingEncoderDecoder.Encode(b)
				if err != nil {
					return err
				}
				pipe.HSet(ctx, bookingKey, []string{b.Id, string(bookingData)})
			}
			return nil
		})
		return err
	}
	err = rw.redisClient.Watch(ctx, txf, key)
	if err == rd.TxFailedErr {
		return api.ConflictError{Entity: "work item", Id: commit.Item.Id}
	}
	if err != nil {
		switch err.(type) {
		case api.ConflictError, api.NotFoundError, persistence.StorageLayerError:
			return err
		}
		logger.Error("error in committing move", zap.String("itemId", commit.Item.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
