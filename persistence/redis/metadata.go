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

const GRAPH_DEF string = "GRAPH"
const TEAM_DEF string = "TEAM"
const USER_DEF string = "USER"

var _ persistence.MetadataStorage = new(redisMetadataStorage)

type redisMetadataStorage struct {
	*baseDao
	graphEncoderDecoder util.EncoderDecoder[model.Graph]
	teamEncoderDecoder  util.EncoderDecoder[model.Team]
	userEncoderDecoder  util.EncoderDecoder[model.User]
}

func NewRedisMetadataStorage(dao *baseDao) *redisMetadataStorage {
	return &redisMetadataStorage{
		baseDao:             dao,
		graphEncoderDecoder: util.NewJsonEncoderDecoder[model.Graph](),
		teamEncoderDecoder:  util.NewJsonEncoderDecoder[model.Team](),
		userEncoderDecoder:  util.NewJsonEncoderDecoder[model.User](),
	}
}

func (rs *redisMetadataStorage) SaveGraph(g model.Graph) error {
	key := rs.baseDao.getNamespaceKey(GRAPH_DEF, g.OrgId)
	ctx := context.Background()
	data, err := rs.graphEncoderDecoder.Encode(g)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, key, []string{g.Id, string(data)}).Err(); err != nil {
		logger.Error("error in saving graph definition", zap.String("graph", g.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if err := rs.redisClient.HSet(ctx, rs.orgIndexKey(GRAPH_DEF), []string{g.Id, g.OrgId}).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisMetadataStorage) DeleteGraph(id string) error {
	ctx := context.Background()
	orgId, err := rs.redisClient.HGet(ctx, rs.orgIndexKey(GRAPH_DEF), id).Result()
	if err != nil {
		if err == rd.Nil {
			return api.NotFoundError{Entity: "graph", Id: id}
		}
		return persistence.StorageLayerError{Message: err.Error()}
	}
	key := rs.baseDao.getNamespaceKey(GRAPH_DEF, orgId)
	if err := rs.redisClient.HDel(ctx, key, id).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if err := rs.redisClient.HDel(ctx, rs.orgIndexKey(GRAPH_DEF), id).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisMetadataStorage) GetGraph(id string) (*model.Graph, error) {
	ctx := context.Background()
	orgId, err := rs.redisClient.HGet(ctx, rs.orgIndexKey(GRAPH_DEF), id).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, api.NotFoundError{Entity: "graph", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	key := rs.baseDao.getNamespaceKey(GRAPH_DEF, orgId)
	graphStr, err := rs.redisClient.HGet(ctx, key, id).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, api.NotFoundError{Entity: "graph", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.graphEncoderDecoder.Decode([]byte(graphStr))
}

func (rs *redisMetadataStorage) ListGraphs(orgId string) ([]model.Graph, error) {
	key := rs.baseDao.getNamespaceKey(GRAPH_DEF, orgId)
	ctx := context.Background()
	all, err := rs.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	graphs := make([]model.Graph, 0, len(all))
	for _, v := range all {
		g, err := rs.graphEncoderDecoder.Decode([]byte(v))
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, *g)
	}
	return graphs, nil
}

func (rs *redisMetadataStorage) SaveTeam(t model.Team) error {
	ctx := context.Background()
	data, err := rs.teamEncoderDecoder.Encode(t)
	if err != nil {
		return err
	}
	key := rs.baseDao.getNamespaceKey(TEAM_DEF, t.OrgId)
	if err := rs.redisClient.HSet(ctx, key, []string{t.Id, string(data)}).Err(); err != nil {
		logger.Error("error in saving team", zap.String("team", t.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if err := rs.redisClient.HSet(ctx, rs.orgIndexKey(TEAM_DEF), []string{t.Id, t.OrgId}).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisMetadataStorage) GetTeam(id string) (*model.Team, error) {
	ctx := context.Background()
	orgId, err := rs.redisClient.HGet(ctx, rs.orgIndexKey(TEAM_DEF), id).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, api.NotFoundError{Entity: "team", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	key := rs.baseDao.getNamespaceKey(TEAM_DEF, orgId)
	teamStr, err := rs.redisClient.HGet(ctx, key, id).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, api.NotFoundError{Entity: "team", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.teamEncoderDecoder.Decode([]byte(teamStr))
}

func (rs *redisMetadataStorage) ListTeams(orgId string) ([]model.Team, error) {
	key := rs.baseDao.getNamespaceKey(TEAM_DEF, orgId)
	ctx := context.Background()
	all, err := rs.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	teams := make([]model.Team, 0, len(all))
	for _, v := range all {
		t, err := rs.teamEncoderDecoder.Decode([]byte(v))
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	return teams, nil
}

func (rs *redisMetadataStorage) SaveUser(u model.User) error {
	ctx := context.Background()
	data, err := rs.userEncoderDecoder.Encode(u)
	if err != nil {
		return err
	}
	key := rs.baseDao.getNamespaceKey(USER_DEF)
	if err := rs.redisClient.HSet(ctx, key, []string{u.Id, string(data)}).Err(); err != nil {
		logger.Error("error in saving user", zap.String("user", u.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisMetadataStorage) GetUser(id string) (*model.User, error) {
	key := rs.baseDao.getNamespaceKey(USER_DEF)
	ctx := context.Background()
	userStr, err := rs.redisClient.HGet(ctx, key, id).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, api.NotFoundError{Entity: "user", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.userEncoderDecoder.Decode([]byte(userStr))
}

func (rs *redisMetadataStorage) orgIndexKey(kind string) string {
	return rs.baseDao.getNamespaceKey(kind, "ORG_INDEX")
}
