package mongostore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var productSortFields = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"name":          "name",
	"regular_price": "regular_price",
	"total_stock":   "total_stock",
}

// ProductRepository implements catalog.ProductRepository on MongoDB
type ProductRepository struct {
	products   *mongo.Collection
	categories *mongo.Collection
	brands     *mongo.Collection
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(s *Store) *ProductRepository {
	return &ProductRepository{
		products:   s.db.Collection(CollectionProducts),
		categories: s.db.Collection(CollectionCategories),
		brands:     s.db.Collection(CollectionBrands),
	}
}

// FindByID finds a product by its ID
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var doc productDocument
	if err := r.products.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}}, nil)
}

// FindAll finds all products matching the filter
func (r *ProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	query, err := r.buildQuery(ctx, filter)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, query, &filter)
}

// Count counts products matching the filter
func (r *ProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query, err := r.buildQuery(ctx, filter)
	if err != nil {
		return 0, err
	}
	return r.products.CountDocuments(ctx, query)
}

// Create inserts a new product document
func (r *ProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	if _, err := r.products.InsertOne(ctx, productFromDomain(product)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock replaces the document only if its version still equals
// expectedVersion
func (r *ProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product, expectedVersion int) error {
	result, err := r.products.ReplaceOne(ctx,
		bson.M{"_id": product.ID.String(), "version": expectedVersion},
		productFromDomain(product))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	if result.MatchedCount == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SKUExists reports whether sku is held by a product other than excludeID
func (r *ProductRepository) SKUExists(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	n, err := r.products.CountDocuments(ctx, bson.M{
		"_id":  bson.M{"$ne": excludeID.String()},
		"skus": sku,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountSKUPrefix counts products other than excludeID holding a SKU that
// starts with prefix
func (r *ProductRepository) CountSKUPrefix(ctx context.Context, prefix string, excludeID uuid.UUID) (int64, error) {
	return r.products.CountDocuments(ctx, bson.M{
		"_id":  bson.M{"$ne": excludeID.String()},
		"skus": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)},
	})
}

func (r *ProductRepository) find(ctx context.Context, query bson.M, filter *shared.Filter) ([]catalog.Product, error) {
	var cursor *mongo.Cursor
	var err error
	if filter != nil {
		cursor, err = r.products.Find(ctx, query, pageOptions(*filter, productSortFields, "created_at", -1))
	} else {
		cursor, err = r.products.Find(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(docs))
	for i := range docs {
		products[i] = *docs[i].toDomain()
	}
	return products, nil
}

// buildQuery translates the filter. listed_only resolves the live
// categories and brands first since documents cannot be joined in a find.
func (r *ProductRepository) buildQuery(ctx context.Context, filter shared.Filter) (bson.M, error) {
	conditions := bson.A{}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		conditions = append(conditions, bson.M{"$or": bson.A{bson.M{"name": pattern}, bson.M{"base_sku": pattern}}})
	}

	for key, value := range filter.Filters {
		switch key {
		case catalog.FilterListedOnly:
			if value != true {
				continue
			}
			categoryIDs, err := liveIDs(ctx, r.categories)
			if err != nil {
				return nil, fmt.Errorf("load live categories: %w", err)
			}
			brandIDs, err := liveIDs(ctx, r.brands)
			if err != nil {
				return nil, fmt.Errorf("load live brands: %w", err)
			}
			conditions = append(conditions, bson.M{
				"is_active":   true,
				"is_deleted":  false,
				"category_id": bson.M{"$in": categoryIDs},
				"brand_id":    bson.M{"$in": brandIDs},
			})
		case catalog.FilterCategoryID:
			conditions = append(conditions, bson.M{"category_id": fmt.Sprint(value)})
		case catalog.FilterBrandID:
			conditions = append(conditions, bson.M{"brand_id": fmt.Sprint(value)})
		case "is_deleted":
			conditions = append(conditions, bson.M{"is_deleted": value})
		}
	}

	if len(conditions) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": conditions}, nil
}

// liveIDs returns the IDs of active, non-deleted documents
func liveIDs(ctx context.Context, coll *mongo.Collection) ([]string, error) {
	cursor, err := coll.Find(ctx, bson.M{"is_active": true, "is_deleted": false})
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// containsPattern matches text anywhere, ignoring case. Regex
// metacharacters in text are literal.
func containsPattern(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}

// Ensure ProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*ProductRepository)(nil)
