package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ByLCY/bytecv/resume"
)

// MongoStore 把可移植记录作为字符串字段保存在以 StorageKey 为 _id 的文档中，
// 读取时仍走 resume.Decode 的修复逻辑。
type MongoStore struct {
	col *mongo.Collection
}

type mongoRecord struct {
	ID        string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

// ConnectMongo 连接并 ping 一次，调用方负责 Disconnect。
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func (s *MongoStore) Load(ctx context.Context) (resume.Record, error) {
	var rec mongoRecord
	err := s.col.FindOne(ctx, bson.M{"_id": StorageKey}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return resume.Record{}, ErrNotFound
		}
		return resume.Record{}, err
	}
	return decode([]byte(rec.Data))
}

func (s *MongoStore) Save(ctx context.Context, doc *resume.Document, at time.Time) error {
	b, err := resume.Encode(doc, at)
	if err != nil {
		return err
	}
	rec := mongoRecord{ID: StorageKey, Data: string(b), UpdatedAt: at.UTC()}
	_, err = s.col.ReplaceOne(ctx, bson.M{"_id": StorageKey}, rec, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Delete(ctx context.Context) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": StorageKey})
	return err
}
