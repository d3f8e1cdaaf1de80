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

const menuCollection = "menus"

type MenuRepository struct {
	coll *mongo.Collection
}

func NewMenuRepository(db *mongo.Database) *MenuRepository {
	return &MenuRepository{coll: db.Collection(menuCollection)}
}

type mongoMenu struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Path          string             `bson:"path"`
	Icon          string             `bson:"icon"`
	Order         int                `bson:"order"`
	ParentID      string             `bson:"parent_id,omitempty"`
	PermissionIDs []string           `bson:"permissions"`
	IsActive      bool               `bson:"is_active"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func toMongoMenu(m *domain.Menu) mongoMenu {
	return mongoMenu{
		Name:          m.Name,
		Path:          m.Path,
		Icon:          m.Icon,
		Order:         m.Order,
		ParentID:      m.ParentID,
		PermissionIDs: m.PermissionIDs,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (mm mongoMenu) toDomain() *domain.Menu {
	return &domain.Menu{
		ID:            mm.ID.Hex(),
		Name:          mm.Name,
		Path:          mm.Path,
		Icon:          mm.Icon,
		Order:         mm.Order,
		ParentID:      mm.ParentID,
		PermissionIDs: mm.PermissionIDs,
		IsActive:      mm.IsActive,
		CreatedAt:     mm.CreatedAt,
		UpdatedAt:     mm.UpdatedAt,
	}
}

func (r *MenuRepository) Create(ctx context.Context, menu *domain.Menu) (*domain.Menu, error) {
	doc := toMongoMenu(menu)
	if doc.PermissionIDs == nil {
		doc.PermissionIDs = []string{}
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert menu: %w", err)
	}
	return r.FindByID(ctx, res.InsertedID.(primitive.ObjectID).Hex())
}

func (r *MenuRepository) FindByID(ctx context.Context, id string) (*domain.Menu, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMenuNotFound
	}
	var mm mongoMenu
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mm); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMenuNotFound
		}
		return nil, fmt.Errorf("find menu: %w", err)
	}
	return mm.toDomain(), nil
}

func (r *MenuRepository) FindAll(ctx context.Context) ([]domain.Menu, error) {
	return r.findMany(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
}

func (r *MenuRepository) FindByParent(ctx context.Context, parentID string) ([]domain.Menu, error) {
	return r.findMany(ctx, bson.M{"parent_id": parentID}, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
}

func (r *MenuRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Menu, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find menus: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoMenu
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode menus: %w", err)
	}

	menus := make([]domain.Menu, len(docs))
	for i, d := range docs {
		menus[i] = *d.toDomain()
	}
	return menus, nil
}

func (r *MenuRepository) List(ctx context.Context, page ports.Page) ([]domain.Menu, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count menus: %w", err)
	}
	menus, err := r.findMany(ctx, bson.M{}, listOptions(page))
	if err != nil {
		return nil, 0, err
	}
	return menus, total, nil
}

func (r *MenuRepository) Update(ctx context.Context, menu *domain.Menu) (*domain.Menu, error) {
	oid, err := primitive.ObjectIDFromHex(menu.ID)
	if err != nil {
		return nil, domain.ErrMenuNotFound
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, toMongoMenu(menu))
	if err != nil {
		return nil, fmt.Errorf("update menu: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrMenuNotFound
	}
	return r.FindByID(ctx, menu.ID)
}

func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrMenuNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMenuNotFound
	}
	return nil
}

func (r *MenuRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

// BulkUpsertByPath writes all menus in one bulk operation, matching on the
// path field. Existing documents keep their created_at.
func (r *MenuRepository) BulkUpsertByPath(ctx context.Context, menus []domain.Menu) error {
	if len(menus) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(menus))
	for _, m := range menus {
		permissions := m.PermissionIDs
		if permissions == nil {
			permissions = []string{}
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"path": m.Path}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"name":        m.Name,
					"path":        m.Path,
					"icon":        m.Icon,
					"order":       m.Order,
					"parent_id":   m.ParentID,
					"permissions": permissions,
					"is_active":   m.IsActive,
					"updated_at":  m.UpdatedAt,
				},
				"$setOnInsert": bson.M{"created_at": m.CreatedAt},
			}).
			SetUpsert(true))
	}

	if _, err := r.coll.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("bulk upsert menus: %w", err)
	}
	return nil
}
