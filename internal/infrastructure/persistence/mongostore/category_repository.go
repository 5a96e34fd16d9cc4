package mongostore

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var lookupSortFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name_key",
}

// lookupQuery translates the filter keys shared by categories and brands
func lookupQuery(filter shared.Filter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		query["name"] = containsPattern(filter.Search)
	}
	for key, value := range filter.Filters {
		switch key {
		case "is_deleted", "is_active":
			query[key] = value
		}
	}
	return query
}

func lookupPage(filter shared.Filter) *options.FindOptions {
	dir := 1
	if filter.OrderBy != "" && filter.OrderBy != "name" {
		dir = -1
	}
	return pageOptions(filter, lookupSortFields, "name_key", dir)
}

// nameTaken reports whether another document already uses the folded name
func nameTaken(ctx context.Context, coll *mongo.Collection, name string, excludeID uuid.UUID) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{
		"name_key": nameKey(name),
		"_id":      bson.M{"$ne": excludeID.String()},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// upsert replaces the document by ID, inserting it when absent
func upsert(ctx context.Context, coll *mongo.Collection, id uuid.UUID, doc any) error {
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id.String()}, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// CategoryRepository implements catalog.CategoryRepository on MongoDB
type CategoryRepository struct {
	coll *mongo.Collection
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(s *Store) *CategoryRepository {
	return &CategoryRepository{coll: s.db.Collection(CollectionCategories)}
}

// FindByID finds a category by its ID
func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var doc categoryDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

// FindByIDs finds multiple categories by their IDs
func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Category, error) {
	if len(ids) == 0 {
		return []catalog.Category{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}}, options.Find())
}

// FindAll finds all categories matching the filter
func (r *CategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	return r.find(ctx, lookupQuery(filter), lookupPage(filter))
}

// Count counts categories matching the filter
func (r *CategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.coll.CountDocuments(ctx, lookupQuery(filter))
}

// ExistsByName checks whether another category uses name, ignoring case
func (r *CategoryRepository) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	return nameTaken(ctx, r.coll, name, excludeID)
}

// Save creates or updates a category
func (r *CategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return upsert(ctx, r.coll, category.ID, categoryFromDomain(category))
}

func (r *CategoryRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]catalog.Category, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	categories := make([]catalog.Category, len(docs))
	for i := range docs {
		categories[i] = *docs[i].toDomain()
	}
	return categories, nil
}

// BrandRepository implements catalog.BrandRepository on MongoDB
type BrandRepository struct {
	coll *mongo.Collection
}

// NewBrandRepository creates a new BrandRepository
func NewBrandRepository(s *Store) *BrandRepository {
	return &BrandRepository{coll: s.db.Collection(CollectionBrands)}
}

// FindByID finds a brand by its ID
func (r *BrandRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Brand, error) {
	var doc brandDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

// FindByIDs finds multiple brands by their IDs
func (r *BrandRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Brand, error) {
	if len(ids) == 0 {
		return []catalog.Brand{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}}, options.Find())
}

// FindAll finds all brands matching the filter
func (r *BrandRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Brand, error) {
	return r.find(ctx, lookupQuery(filter), lookupPage(filter))
}

// Count counts brands matching the filter
func (r *BrandRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.coll.CountDocuments(ctx, lookupQuery(filter))
}

// ExistsByName checks whether another brand uses name, ignoring case
func (r *BrandRepository) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	return nameTaken(ctx, r.coll, name, excludeID)
}

// Save creates or updates a brand
func (r *BrandRepository) Save(ctx context.Context, brand *catalog.Brand) error {
	return upsert(ctx, r.coll, brand.ID, brandFromDomain(brand))
}

func (r *BrandRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]catalog.Brand, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []brandDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	brands := make([]catalog.Brand, len(docs))
	for i := range docs {
		brands[i] = *docs[i].toDomain()
	}
	return brands, nil
}

var (
	_ catalog.CategoryRepository = (*CategoryRepository)(nil)
	_ catalog.BrandRepository    = (*BrandRepository)(nil)
)
