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

const roleCollection = "roles"

type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(roleCollection)}
}

type mongoAPIKey struct {
	Key        string    `bson:"key"`
	SecretHash string    `bson:"secret_hash"`
	Remark     string    `bson:"remark"`
	IsActive   bool      `bson:"is_active"`
	CreatedAt  time.Time `bson:"created_at"`
	LastUsedAt time.Time `bson:"last_used_at,omitempty"`
}

type mongoRole struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Code          string             `bson:"code"`
	Description   string             `bson:"description"`
	PermissionIDs []string           `bson:"permissions"`
	MenuIDs       []string           `bson:"menus"`
	APIKeys       []mongoAPIKey      `bson:"api_keys"`
	IsSystem      bool               `bson:"is_system"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func toMongoRole(r *domain.Role) mongoRole {
	keys := make([]mongoAPIKey, len(r.APIKeys))
	for i, k := range r.APIKeys {
		keys[i] = mongoAPIKey(k)
	}
	return mongoRole{
		Name:          r.Name,
		Code:          string(r.Code),
		Description:   r.Description,
		PermissionIDs: r.PermissionIDs,
		MenuIDs:       r.MenuIDs,
		APIKeys:       keys,
		IsSystem:      r.IsSystem,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (mr mongoRole) toDomain() *domain.Role {
	keys := make([]domain.APIKey, len(mr.APIKeys))
	for i, k := range mr.APIKeys {
		keys[i] = domain.APIKey(k)
	}
	return &domain.Role{
		ID:            mr.ID.Hex(),
		Name:          mr.Name,
		Code:          domain.NormalizeRoleCode(mr.Code),
		Description:   mr.Description,
		PermissionIDs: mr.PermissionIDs,
		MenuIDs:       mr.MenuIDs,
		APIKeys:       keys,
		IsSystem:      mr.IsSystem,
		CreatedAt:     mr.CreatedAt,
		UpdatedAt:     mr.UpdatedAt,
	}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	doc := toMongoRole(role)
	if doc.PermissionIDs == nil {
		doc.PermissionIDs = []string{}
	}
	if doc.MenuIDs == nil {
		doc.MenuIDs = []string{}
	}
	if doc.APIKeys == nil {
		doc.APIKeys = []mongoAPIKey{}
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}
	return r.FindByID(ctx, res.InsertedID.(primitive.ObjectID).Hex())
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *RoleRepository) FindByCode(ctx context.Context, code domain.RoleCode) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"code": string(code)})
}

func (r *RoleRepository) FindByAPIKey(ctx context.Context, key string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"api_keys.key": key})
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Role, error) {
	var mr mongoRole
	if err := r.coll.FindOne(ctx, filter).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return mr.toDomain(), nil
}

func (r *RoleRepository) List(ctx context.Context, page ports.Page) ([]domain.Role, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}

	cursor, err := r.coll.Find(ctx, bson.M{}, listOptions(page))
	if err != nil {
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoRole
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode roles: %w", err)
	}

	roles := make([]domain.Role, len(docs))
	for i, d := range docs {
		roles[i] = *d.toDomain()
	}
	return roles, total, nil
}

func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(role.ID)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}

	// API keys are managed through their own operations; this update leaves
	// them untouched.
	update := bson.M{"$set": bson.M{
		"name":        role.Name,
		"code":        string(role.Code),
		"description": role.Description,
		"permissions": role.PermissionIDs,
		"menus":       role.MenuIDs,
		"is_system":   role.IsSystem,
		"updated_at":  role.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrRoleNotFound
	}
	return r.FindByID(ctx, role.ID)
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRoleNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	return r.exists(ctx, bson.M{"name": name}, excludeID)
}

func (r *RoleRepository) CodeExists(ctx context.Context, code domain.RoleCode, excludeID string) (bool, error) {
	return r.exists(ctx, bson.M{"code": string(code)}, excludeID)
}

func (r *RoleRepository) exists(ctx context.Context, filter bson.M, excludeID string) (bool, error) {
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

func (r *RoleRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *RoleRepository) AppendAPIKey(ctx context.Context, roleID string, key domain.APIKey) error {
	oid, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return domain.ErrRoleNotFound
	}
	update := bson.M{"$push": bson.M{"api_keys": mongoAPIKey(key)}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("append api key: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) SetAPIKeyActive(ctx context.Context, roleID, key string, active bool) error {
	oid, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return domain.ErrRoleNotFound
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "api_keys.key": key},
		bson.M{"$set": bson.M{"api_keys.$.is_active": active}},
	)
	if err != nil {
		return fmt.Errorf("toggle api key: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAPIKeyNotFound
	}
	return nil
}

func (r *RoleRepository) RemoveAPIKey(ctx context.Context, roleID, key string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return false, domain.ErrRoleNotFound
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"api_keys": bson.M{"key": key}}},
	)
	if err != nil {
		return false, fmt.Errorf("remove api key: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, domain.ErrRoleNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *RoleRepository) TouchAPIKey(ctx context.Context, roleID, key string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return domain.ErrRoleNotFound
	}
	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "api_keys.key": key},
		bson.M{"$set": bson.M{"api_keys.$.last_used_at": at}},
	)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}
