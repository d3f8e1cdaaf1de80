package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

const auditCollection = "operation_logs"

// AuditRepository is the append-only sink for audit events.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	Username   string             `bson:"username"`
	Action     string             `bson:"action"`
	Resource   string             `bson:"resource"`
	ResourceID string             `bson:"resource_id,omitempty"`
	Method     string             `bson:"method,omitempty"`
	Path       string             `bson:"path,omitempty"`
	IP         string             `bson:"ip,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty"`
	Outcome    string             `bson:"outcome"`
	Error      string             `bson:"error,omitempty"`
	Duration   int64              `bson:"duration_ms"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (me mongoAuditEvent) toDomain() domain.AuditEvent {
	return domain.AuditEvent{
		ID:         me.ID.Hex(),
		UserID:     me.UserID,
		Username:   me.Username,
		Action:     me.Action,
		Resource:   me.Resource,
		ResourceID: me.ResourceID,
		Method:     me.Method,
		Path:       me.Path,
		IP:         me.IP,
		UserAgent:  me.UserAgent,
		Outcome:    domain.AuditOutcome(me.Outcome),
		Error:      me.Error,
		Duration:   me.Duration,
		CreatedAt:  me.CreatedAt,
	}
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := mongoAuditEvent{
		UserID:     event.UserID,
		Username:   event.Username,
		Action:     event.Action,
		Resource:   event.Resource,
		ResourceID: event.ResourceID,
		Method:     event.Method,
		Path:       event.Path,
		IP:         event.IP,
		UserAgent:  event.UserAgent,
		Outcome:    string(event.Outcome),
		Error:      event.Error,
		Duration:   event.Duration,
		CreatedAt:  event.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, page ports.Page) ([]domain.AuditEvent, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}

	cursor, err := r.coll.Find(ctx, bson.M{}, listOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("list audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoAuditEvent
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode audit events: %w", err)
	}

	events := make([]domain.AuditEvent, len(docs))
	for i, d := range docs {
		events[i] = d.toDomain()
	}
	return events, total, nil
}

func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("recent audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoAuditEvent
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}

	events := make([]domain.AuditEvent, len(docs))
	for i, d := range docs {
		events[i] = d.toDomain()
	}
	return events, nil
}
