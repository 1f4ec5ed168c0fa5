package redis

import (
	"context"

	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/persistence"
	"github.com/mohitkumar/stepline/util"
	"go.uber.org/zap"
)

const HISTORY_KEY string = "HISTORY"

var _ persistence.HistoryStorage = new(redisHistoryDao)

type redisHistoryDao struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.HistoryRecord]
}

func NewRedisHistoryDao(dao *baseDao) *redisHistoryDao {
	return &redisHistoryDao{
		baseDao:        dao,
		encoderDecoder: util.NewJsonEncoderDecoder[model.HistoryRecord](),
	}
}

func (rh *redisHistoryDao) Append(record model.HistoryRecord) error {
	key := rh.baseDao.getNamespaceKey(HISTORY_KEY, record.WorkItemId)
	ctx := context.Background()
	data, err := rh.encoderDecoder.Encode(record)
	if err != nil {
		return err
	}
	if err := rh.redisClient.RPush(ctx, key, data).Err(); err != nil {
		logger.Error("error in appending history record", zap.String("itemId", record.WorkItemId), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rh *redisHistoryDao) GetByWorkItem(workItemId string) ([]model.HistoryRecord, error) {
	key := rh.baseDao.getNamespaceKey(HISTORY_KEY, workItemId)
	ctx := context.Background()
	rows, err := rh.redisClient.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logger.Error("error in reading history", zap.String("itemId", workItemId), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	records := make([]model.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		record, err := rh.encoderDecoder.Decode([]byte(row))
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (rh *redisHistoryDao) DeleteByWorkItem(workItemId string) error {
	key := rh.baseDao.getNamespaceKey(HISTORY_KEY, workItemId)
	ctx := context.Background()
	if err := rh.redisClient.Del(ctx, key).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
