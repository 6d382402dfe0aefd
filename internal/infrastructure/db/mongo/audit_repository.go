package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

const collectionAudit = "audit_log"

type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudit)}
}

type auditDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CorrelationID string             `bson:"correlation_id"`
	Event         string             `bson:"event"`
	Identifier    string             `bson:"identifier,omitempty"`
	EnvironmentID string             `bson:"environment_id,omitempty"`
	Status        string             `bson:"status"`
	Description   string             `bson:"description"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (d auditDoc) toDomain() *domain.AuditEntry {
	return &domain.AuditEntry{
		ID: d.ID.Hex(),
		AuditEvent: domain.AuditEvent{
			CorrelationID: d.CorrelationID,
			Event:         d.Event,
			Identifier:    d.Identifier,
			EnvironmentID: d.EnvironmentID,
			Status:        domain.AuditStatus(d.Status),
			Description:   d.Description,
			CreatedAt:     d.CreatedAt,
		},
	}
}

// Insert persists one audit entry.
func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := auditDoc{
		CorrelationID: entry.CorrelationID,
		Event:         entry.Event,
		Identifier:    entry.Identifier,
		EnvironmentID: entry.EnvironmentID,
		Status:        string(entry.Status),
		Description:   entry.Description,
		CreatedAt:     entry.CreatedAt,
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *AuditRepository) FindByID(ctx context.Context, id string) (*domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAuditEntryNotFound
	}

	var doc auditDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAuditEntryNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// List returns a page of audit entries matching q, newest first, plus the
// total count.
func (r *AuditRepository) List(ctx context.Context, q ports.AuditQuery) ([]*domain.AuditEntry, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = string(q.Status)
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: q.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"identifier": pattern},
			bson.M{"description": pattern},
			bson.M{"event": pattern},
		}
	}
	created := bson.M{}
	if !q.DateFrom.IsZero() {
		created["$gte"] = q.DateFrom
	}
	if !q.DateTo.IsZero() {
		created["$lte"] = q.DateTo
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []*domain.AuditEntry
	for cursor.Next(ctx) {
		var doc auditDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toDomain())
	}
	return out, total, cursor.Err()
}

// Stats aggregates entry counts by status over the period.
func (r *AuditRepository) Stats(ctx context.Context, from, to time.Time) (*domain.AuditStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := bson.M{}
	created := bson.M{}
	if !from.IsZero() {
		created["$gte"] = from
	}
	if !to.IsZero() {
		created["$lte"] = to
	}
	if len(created) > 0 {
		match["created_at"] = created
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := &domain.AuditStats{}
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		stats.Total += row.Count
		switch domain.AuditStatus(row.ID) {
		case domain.AuditSuccess:
			stats.Success = row.Count
		case domain.AuditError:
			stats.Error = row.Count
		case domain.AuditPending:
			stats.Pending = row.Count
		}
	}
	return stats, cursor.Err()
}

// EnsureIndexes creates necessary indexes on the audit collection.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "correlation_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
