// Package mongo is the MongoDB-backed channel metadata store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akhilnr/classcord/internal/domain"
	"github.com/akhilnr/classcord/internal/storage"
)

const channelsCollection = "channels"

type ChannelStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewChannelStore(ctx context.Context, uri, db string) (*ChannelStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &ChannelStore{
		client: client,
		col:    client.Database(db).Collection(channelsCollection),
	}, nil
}

func (s *ChannelStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *ChannelStore) Create(ctx context.Context, name string, typ domain.ChannelType) (*domain.Channel, error) {
	ch, err := domain.NewChannel(name, typ)
	if err != nil {
		return nil, err
	}
	ch.ID = domain.ChannelID(primitive.NewObjectID().Hex())

	if _, err := s.col.InsertOne(ctx, ch); err != nil {
		return nil, fmt.Errorf("insert channel: %w", err)
	}
	return ch, nil
}

func (s *ChannelStore) Get(ctx context.Context, id domain.ChannelID) (*domain.Channel, error) {
	var ch domain.Channel
	err := s.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&ch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find channel: %w", err)
	}
	return &ch, nil
}

func (s *ChannelStore) List(ctx context.Context) ([]*domain.Channel, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Channel
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode channels: %w", err)
	}
	return out, nil
}

func (s *ChannelStore) Delete(ctx context.Context, id domain.ChannelID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrChannelNotFound
	}
	return nil
}
