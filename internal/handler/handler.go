package handler

import (
	"campusmatch/backend/internal/matcher"
	"campusmatch/backend/internal/relationship"
	"campusmatch/backend/internal/store"

	"gorm.io/gorm"
)

var (
	relationshipService *relationship.Service
	matcherService      *matcher.Service
)

// Init wires the handler package to its services. Called once from main after
// the database connection is established.
func Init(db *gorm.DB) {
	relationshipStore := store.NewGormRelationshipStore(db)
	relationshipService = relationship.NewService(relationshipStore)
	matcherService = matcher.NewService(db, relationshipStore)
}
