package repository

import (
	"context"
	"time"

	"keyhub/internal/core"
	client "keyhub/internal/database/client"
	"keyhub/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 單一 owner 只回最近的清除紀錄
const purgeHistoryLimit = 100

type PurgeAuditRepository struct {
	collection *mongo.Collection
}

func NewPurgeAuditRepository(mongoClient *client.MongoClient) *PurgeAuditRepository {
	repository := &PurgeAuditRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionPurgeAudits)),
	}
	_ = ensureIndexes(repository.collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_ownerId_createdAt"),
		},
	})
	return repository
}

// Insert：稽核只新增不修改
func (repository *PurgeAuditRepository) Insert(
	contextValue context.Context,
	audit *model.PurgeAudit,
) (returnedError error) {

	if audit.ID.IsZero() {
		audit.ID = primitive.NewObjectID()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	_, returnedError = repository.collection.InsertOne(contextValue, audit)
	return returnedError
}

// ListByOwner：同一 owner 的清除紀錄，新到舊
func (repository *PurgeAuditRepository) ListByOwner(
	contextValue context.Context,
	ownerID string,
) (_ []*model.PurgeAudit, returnedError error) {

	cursor, findError := repository.collection.Find(contextValue, bson.M{"ownerId": ownerID},
		newestFirst(core.ListOptions{Size: purgeHistoryLimit}))
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	audits := make([]*model.PurgeAudit, 0)
	if returnedError = cursor.All(contextValue, &audits); returnedError != nil {
		return nil, returnedError
	}
	return audits, nil
}
