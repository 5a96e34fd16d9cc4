// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel, AggregateModel and the catalog LifecycleModel
//   - catalog.go: products (variants as a JSON document column), categories, brands
//   - shopping.go: carts (line items as a JSON document column), wishlists
//
// Products and carts are stored as documents: the aggregate and its children
// are written in one row so a single conditional UPDATE on version covers
// the whole aggregate.
package models
