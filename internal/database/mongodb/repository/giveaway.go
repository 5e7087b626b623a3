package repository

import (
	"context"
	"errors"
	"time"

	"keyhub/internal/core"
	client "keyhub/internal/database/client"
	"keyhub/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GiveawayRepository struct {
	collection *mongo.Collection
}

func NewGiveawayRepository(mongoClient *client.MongoClient) *GiveawayRepository {
	repository := &GiveawayRepository{
		collection: mongoClient.Database().Collection(string(core.MongoCollectionGiveaways)),
	}
	_ = ensureIndexes(repository.collection, []mongo.IndexModel{
		{ // 後台列表依建立時間倒序
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_createdAt_desc"),
		},
		{ // 依伺服器與狀態查進行中的活動
			Keys:    bson.D{{Key: "guildId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_guildId_status"),
		},
	})
	return repository
}

// Create：單文件插入，_id 由上游產生
func (repository *GiveawayRepository) Create(
	contextValue context.Context,
	giveaway *model.Giveaway,
) (_ *model.Giveaway, returnedError error) {

	nowUTC := time.Now().UTC()
	if giveaway.CreatedAt.IsZero() {
		giveaway.CreatedAt = nowUTC
	}
	giveaway.UpdatedAt = nowUTC

	if _, returnedError = repository.collection.InsertOne(contextValue, giveaway); returnedError != nil {
		return nil, returnedError
	}
	return giveaway, nil
}

// GetByID：找不到時回傳 nil, nil
func (repository *GiveawayRepository) GetByID(
	contextValue context.Context,
	giveawayID string,
) (_ *model.Giveaway, returnedError error) {

	var giveaway model.Giveaway
	returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": giveawayID}).Decode(&giveaway)
	if errors.Is(returnedError, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if returnedError != nil {
		return nil, returnedError
	}
	return &giveaway, nil
}

// Replace：整份覆寫（參加者與得獎者都是陣列，部分更新反而難維護）
func (repository *GiveawayRepository) Replace(
	contextValue context.Context,
	giveaway *model.Giveaway,
) (_ int64, returnedError error) {

	giveaway.UpdatedAt = time.Now().UTC()
	result, replaceError := repository.collection.ReplaceOne(contextValue, bson.M{"_id": giveaway.ID}, giveaway)
	if replaceError != nil {
		return 0, replaceError
	}
	return result.MatchedCount, nil
}

// UpdateMessageID：bot 發出公告後回填訊息 ID
func (repository *GiveawayRepository) UpdateMessageID(
	contextValue context.Context,
	giveawayID string,
	messageID string,
) (_ int64, returnedError error) {

	update := bson.M{"$set": bson.M{"messageId": messageID}}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": giveawayID}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

// Delete：回傳是否真的刪到
func (repository *GiveawayRepository) Delete(
	contextValue context.Context,
	giveawayID string,
) (_ bool, returnedError error) {

	result, deleteError := repository.collection.DeleteOne(contextValue, bson.M{"_id": giveawayID})
	if deleteError != nil {
		return false, deleteError
	}
	return result.DeletedCount > 0, nil
}

// List：分頁查詢（page 由 0 起算）
func (repository *GiveawayRepository) List(
	contextValue context.Context,
	listOptions core.ListOptions,
) (_ []*model.Giveaway, returnedError error) {

	filter := listOptions.Filter
	if filter == nil {
		filter = bson.M{}
	}
	cursor, findError := repository.collection.Find(contextValue, filter, newestFirst(listOptions))
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	giveaways := make([]*model.Giveaway, 0)
	if returnedError = cursor.All(contextValue, &giveaways); returnedError != nil {
		return nil, returnedError
	}
	return giveaways, nil
}
