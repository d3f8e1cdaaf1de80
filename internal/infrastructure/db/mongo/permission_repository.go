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

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

const permissionCollection = "permissions"

type PermissionRepository struct {
	coll *mongo.Collection
}

func NewPermissionRepository(db *mongo.Database) *PermissionRepository {
	return &PermissionRepository{coll: db.Collection(permissionCollection)}
}

type mongoPermission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Code        string             `bson:"code"`
	Description string             `bson:"description"`
	Type        string             `bson:"type"`
	Module      string             `bson:"module"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func toMongoPermission(p *domain.Permission) mongoPermission {
	return mongoPermission{
		Name:        p.Name,
		Code:        p.Code,
		Description: p.Description,
		Type:        string(p.Type),
		Module:      p.Module,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (mp mongoPermission) toDomain() *domain.Permission {
	return &domain.Permission{
		ID:          mp.ID.Hex(),
		Name:        mp.Name,
		Code:        mp.Code,
		Description: mp.Description,
		Type:        domain.PermissionType(mp.Type),
		Module:      mp.Module,
		CreatedAt:   mp.CreatedAt,
		UpdatedAt:   mp.UpdatedAt,
	}
}

func (r *PermissionRepository) Create(ctx context.Context, perm *domain.Permission) (*domain.Permission, error) {
	res, err := r.coll.InsertOne(ctx, toMongoPermission(perm))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("insert permission: %w", err)
	}
	return r.FindByID(ctx, res.InsertedID.(primitive.ObjectID).Hex())
}

func (r *PermissionRepository) FindByID(ctx context.Context, id string) (*domain.Permission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPermissionNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *PermissionRepository) FindByCode(ctx context.Context, code string) (*domain.Permission, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *PermissionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Permission, error) {
	var mp mongoPermission
	if err := r.coll.FindOne(ctx, filter).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPermissionNotFound
		}
		return nil, fmt.Errorf("find permission: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *PermissionRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Permission, error) {
	if len(ids) == 0 {
		return []domain.Permission{}, nil
	}
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
}

func (r *PermissionRepository) FindAll(ctx context.Context) ([]domain.Permission, error) {
	return r.findMany(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
}

func (r *PermissionRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Permission, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find permissions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoPermission
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}

	perms := make([]domain.Permission, len(docs))
	for i, d := range docs {
		perms[i] = *d.toDomain()
	}
	return perms, nil
}

func (r *PermissionRepository) List(ctx context.Context, page ports.Page) ([]domain.Permission, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count permissions: %w", err)
	}

	perms, err := r.findMany(ctx, bson.M{}, listOptions(page))
	if err != nil {
		return nil, 0, err
	}
	return perms, total, nil
}

func (r *PermissionRepository) Update(ctx context.Context, perm *domain.Permission) (*domain.Permission, error) {
	oid, err := primitive.ObjectIDFromHex(perm.ID)
	if err != nil {
		return nil, domain.ErrPermissionNotFound
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, toMongoPermission(perm))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("update permission: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrPermissionNotFound
	}
	return r.FindByID(ctx, perm.ID)
}

func (r *PermissionRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPermissionNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPermissionNotFound
	}
	return nil
}

func (r *PermissionRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	return r.exists(ctx, bson.M{"name": name}, excludeID)
}

func (r *PermissionRepository) CodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	return r.exists(ctx, bson.M{"code": code}, excludeID)
}

func (r *PermissionRepository) exists(ctx context.Context, filter bson.M, excludeID string) (bool, error) {
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return n > 0, nil
}

func (r *PermissionRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
