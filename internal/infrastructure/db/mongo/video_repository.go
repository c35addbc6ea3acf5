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

	"github.com/vidvault/streaming-api/internal/core/domain"
)

const collectionVideos = "videos"

type VideoRepository struct {
	col *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{col: db.Collection(collectionVideos)}
}

type videoDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"user_id"`
	OwnerUsername   string             `bson:"owner_username,omitempty"`
	ProviderVideoID string             `bson:"provider_video_id"`
	EmbedURL        string             `bson:"embed_url"`
	Title           string             `bson:"title"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func (d *videoDoc) toDomain() *domain.Video {
	return &domain.Video{
		ID:              d.ID.Hex(),
		UserID:          d.UserID,
		OwnerUsername:   d.OwnerUsername,
		ProviderVideoID: d.ProviderVideoID,
		EmbedURL:        d.EmbedURL,
		Title:           d.Title,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (r *VideoRepository) Create(ctx context.Context, video *domain.Video) (*domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := videoDoc{
		UserID:          video.UserID,
		OwnerUsername:   video.OwnerUsername,
		ProviderVideoID: video.ProviderVideoID,
		EmbedURL:        video.EmbedURL,
		Title:           video.Title,
		CreatedAt:       video.CreatedAt,
		UpdatedAt:       video.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*domain.Video, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrVideoNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *VideoRepository) FindByIDAndOwner(ctx context.Context, id, userID string) (*domain.Video, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrVideoNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "user_id": userID})
}

func (r *VideoRepository) findOne(ctx context.Context, filter bson.M) (*domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc videoDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, fmt.Errorf("find video: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *VideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer cur.Close(ctx)

	var videos []*domain.Video
	for cur.Next(ctx) {
		var doc videoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode video: %w", err)
		}
		videos = append(videos, doc.toDomain())
	}
	return videos, cur.Err()
}

func (r *VideoRepository) Update(ctx context.Context, video *domain.Video) (*domain.Video, error) {
	oid, err := primitive.ObjectIDFromHex(video.ID)
	if err != nil {
		return nil, domain.ErrVideoNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"provider_video_id": video.ProviderVideoID,
		"embed_url":         video.EmbedURL,
		"title":             video.Title,
		"updated_at":        time.Now().UTC(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc videoDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, fmt.Errorf("update video: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrVideoNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete videos: %w", err)
	}
	return nil
}

// EnsureIndexes creates the owner index used by owner-scoped lookups.
func (r *VideoRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	return err
}
