package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

const collectionAdmissionEvents = "admission_events"

// AuditRepository appends admission-decision events. Writes happen on the
// audit workers, never on the request path.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAdmissionEvents)}
}

type admissionEventDoc struct {
	UserID      string    `bson:"user_id"`
	Fingerprint string    `bson:"fingerprint"`
	Outcome     string    `bson:"outcome"`
	MaxDevices  int       `bson:"max_devices"`
	At          time.Time `bson:"at"`
}

func (r *AuditRepository) InsertAdmissionEvent(ctx context.Context, event *domain.AdmissionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := admissionEventDoc{
		UserID:      event.UserID,
		Fingerprint: event.Fingerprint,
		Outcome:     event.Outcome,
		MaxDevices:  event.MaxDevices,
		At:          event.At,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert admission event: %w", err)
	}
	return nil
}
