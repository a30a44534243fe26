// Package store provides the durable asset store.
//
// The Store interface deliberately has no change-detection logic: it offers
// get-by-natural-key, scoped listing, child listing for the cascade walk and
// a natural-key upsert. The gorm implementation backs the service; the
// in-memory implementation backs tests.
package store
