package mongostore

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CartRepository implements shopping.CartRepository on MongoDB
type CartRepository struct {
	coll *mongo.Collection
}

// NewCartRepository creates a new CartRepository
func NewCartRepository(s *Store) *CartRepository {
	return &CartRepository{coll: s.db.Collection(CollectionCarts)}
}

// FindByUser finds the cart owned by userID
func (r *CartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	var doc cartDocument
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

// Create inserts a new cart. The unique user_id index turns a lost race
// into shared.ErrConcurrencyConflict.
func (r *CartRepository) Create(ctx context.Context, cart *shopping.Cart) error {
	if _, err := r.coll.InsertOne(ctx, cartFromDomain(cart)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// SaveWithLock replaces the cart only if its version still equals
// expectedVersion
func (r *CartRepository) SaveWithLock(ctx context.Context, cart *shopping.Cart, expectedVersion int) error {
	result, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": cart.ID.String(), "version": expectedVersion},
		cartFromDomain(cart))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// WishlistRepository implements shopping.WishlistRepository on MongoDB
type WishlistRepository struct {
	coll *mongo.Collection
}

// NewWishlistRepository creates a new WishlistRepository
func NewWishlistRepository(s *Store) *WishlistRepository {
	return &WishlistRepository{coll: s.db.Collection(CollectionWishlists)}
}

// FindByUser finds the wishlist owned by userID
func (r *WishlistRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*shopping.Wishlist, error) {
	var doc wishlistDocument
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toDomain(), nil
}

// FindContaining finds every wishlist holding productID
func (r *WishlistRepository) FindContaining(ctx context.Context, productID uuid.UUID) ([]shopping.Wishlist, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"product_ids": productID.String()})
	if err != nil {
		return nil, err
	}
	var docs []wishlistDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	wishlists := make([]shopping.Wishlist, len(docs))
	for i := range docs {
		wishlists[i] = *docs[i].toDomain()
	}
	return wishlists, nil
}

// Save creates or replaces a wishlist
func (r *WishlistRepository) Save(ctx context.Context, wishlist *shopping.Wishlist) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": wishlist.ID.String()},
		wishlistFromDomain(wishlist),
		options.Replace().SetUpsert(true))
	return err
}

var (
	_ shopping.CartRepository     = (*CartRepository)(nil)
	_ shopping.WishlistRepository = (*WishlistRepository)(nil)
)
