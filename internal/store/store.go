// Package store is the data access layer: one gorm-backed store per entity,
// validating input at the boundary and wrapping storage failures in errcode types.
package store

import "gorm.io/gorm/clause"

var onConflictDoNothing = clause.OnConflict{DoNothing: true}
