package repository

import (
	"context"
	"time"

	"keyhub/internal/core"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewGiveawayRepository,
	NewPurgeAuditRepository,
)

const (
	indexTimeout    = 10 * time.Second
	defaultPageSize = 50
)

// ensureIndexes 建立失敗不阻擋啟動，查詢仍可運作只是較慢
func ensureIndexes(collection *mongo.Collection, indexModels []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()
	_, err := collection.Indexes().CreateMany(ctx, indexModels)
	return err
}

// newestFirst 依 createdAt 倒序分頁；Size <= 0 取預設頁大小
func newestFirst(listOptions core.ListOptions) *options.FindOptions {
	size := listOptions.Size
	if size <= 0 {
		size = defaultPageSize
	}
	page := listOptions.Page
	if page < 0 {
		page = 0
	}
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page * size).
		SetLimit(size)
}

// withUpdatedAt 讓伺服器端寫入 updatedAt
func withUpdatedAt(update bson.M) bson.M {
	currentDate, ok := update["$currentDate"].(bson.M)
	if !ok || currentDate == nil {
		currentDate = bson.M{}
	}
	currentDate["updatedAt"] = true
	update["$currentDate"] = currentDate
	return update
}
