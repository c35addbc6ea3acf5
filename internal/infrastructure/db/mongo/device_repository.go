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

const collectionDevices = "devices"

type DeviceRepository struct {
	col *mongo.Collection
}

func NewDeviceRepository(db *mongo.Database) *DeviceRepository {
	return &DeviceRepository{col: db.Collection(collectionDevices)}
}

type deviceDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"user_id"`
	Fingerprint   string             `bson:"fingerprint"`
	RawDescriptor string             `bson:"device_info"`
	LastActive    time.Time          `bson:"last_active"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (d *deviceDoc) toDomain() *domain.Device {
	return &domain.Device{
		ID:            d.ID.Hex(),
		UserID:        d.UserID,
		Fingerprint:   d.Fingerprint,
		RawDescriptor: d.RawDescriptor,
		LastActive:    d.LastActive,
		CreatedAt:     d.CreatedAt,
	}
}

// Create inserts a device record. The unique (user_id, fingerprint) index
// turns a concurrent double-insert into domain.ErrDeviceExists, which the
// admission service recovers from by re-reading the winner's record.
func (r *DeviceRepository) Create(ctx context.Context, device *domain.Device) (*domain.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := deviceDoc{
		UserID:        device.UserID,
		Fingerprint:   device.Fingerprint,
		RawDescriptor: device.RawDescriptor,
		LastActive:    device.LastActive,
		CreatedAt:     device.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDeviceExists
		}
		return nil, fmt.Errorf("insert device: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *DeviceRepository) FindByID(ctx context.Context, id string) (*domain.Device, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDeviceNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc deviceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("find device: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DeviceRepository) FindByUserAndFingerprint(ctx context.Context, userID, fingerprint string) (*domain.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "fingerprint": fingerprint}

	var doc deviceDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("find device: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *DeviceRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "last_active", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer cur.Close(ctx)

	var devices []*domain.Device
	for cur.Next(ctx) {
		var doc deviceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode device: %w", err)
		}
		devices = append(devices, doc.toDomain())
	}
	return devices, cur.Err()
}

func (r *DeviceRepository) CountActiveSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"user_id":     userID,
		"last_active": bson.M{"$gte": since},
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count active devices: %w", err)
	}
	return n, nil
}

func (r *DeviceRepository) UpdateLastActive(ctx context.Context, id string, ts time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrDeviceNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"last_active": ts}})
	if err != nil {
		return fmt.Errorf("update last active: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrDeviceNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete devices: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique (user_id, fingerprint) compound index and
// the last_active index backing the activity-window count.
func (r *DeviceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "fingerprint", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "last_active", Value: -1},
			},
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
