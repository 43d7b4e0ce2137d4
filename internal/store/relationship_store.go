package store

import (
	"errors"
	"fmt"

	"campusmatch/backend/internal/models"

	"gorm.io/gorm"
)

// RelationshipStore defines the persistence contract for the relationship
// engine. Lookups are direction-independent: every implementation must
// canonicalize the party order on read and write. The store is plain
// single-row semantics; per-pair serialization is the request service's job.
type RelationshipStore interface {
	Get(kind models.RelationshipKind, userA, userB uint, activityID *uint) (*models.Relationship, error)
	GetByID(id uint) (*models.Relationship, error)
	Save(rel *models.Relationship) error
	Delete(id uint) error
	ListForUser(userID uint, kind models.RelationshipKind, status *models.RelationshipStatus) ([]models.Relationship, error)
	RelatedPartnerIDs(userID uint, kind models.RelationshipKind, statuses []models.RelationshipStatus) ([]uint, error)
}

// GormRelationshipStore implements RelationshipStore on the relationships table.
type GormRelationshipStore struct {
	db *gorm.DB
}

// NewGormRelationshipStore creates a new GormRelationshipStore.
func NewGormRelationshipStore(db *gorm.DB) *GormRelationshipStore {
	return &GormRelationshipStore{db: db}
}

// Get retrieves the single row for the pair key, or nil when none exists.
func (s *GormRelationshipStore) Get(kind models.RelationshipKind, userA, userB uint, activityID *uint) (*models.Relationship, error) {
	a, b := models.CanonicalPair(userA, userB)

	query := s.db.Where("kind = ? AND party_a = ? AND party_b = ?", kind, a, b)
	if activityID != nil {
		query = query.Where("activity_id = ?", *activityID)
	} else {
		query = query.Where("activity_id IS NULL")
	}

	var rel models.Relationship
	if err := query.First(&rel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load relationship: %w", err)
	}
	return &rel, nil
}

// GetByID retrieves a relationship by its ID, or nil when none exists.
func (s *GormRelationshipStore) GetByID(id uint) (*models.Relationship, error) {
	var rel models.Relationship
	if err := s.db.First(&rel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load relationship %d: %w", id, err)
	}
	return &rel, nil
}

// Save upserts a relationship. The party order is canonicalized so the
// natural-key unique index holds no matter what the caller passed in.
func (s *GormRelationshipStore) Save(rel *models.Relationship) error {
	rel.PartyA, rel.PartyB = models.CanonicalPair(rel.PartyA, rel.PartyB)
	if err := s.db.Save(rel).Error; err != nil {
		return fmt.Errorf("failed to save relationship: %w", err)
	}
	return nil
}

// Delete hard-deletes a relationship row, returning the pair to the virtual
// none state.
func (s *GormRelationshipStore) Delete(id uint) error {
	result := s.db.Delete(&models.Relationship{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete relationship %d: %w", id, result.Error)
	}
	return nil
}

// ListForUser returns all rows of the given kind that involve the user,
// optionally filtered by status, newest activity first.
func (s *GormRelationshipStore) ListForUser(userID uint, kind models.RelationshipKind, status *models.RelationshipStatus) ([]models.Relationship, error) {
	query := s.db.
		Where("kind = ?", kind).
		Where("party_a = ? OR party_b = ?", userID, userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var rels []models.Relationship
	if err := query.Order("updated_at DESC, id DESC").Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("failed to list relationships for user %d: %w", userID, err)
	}
	return rels, nil
}

// RelatedPartnerIDs returns the IDs of everyone the user holds a row of the
// given kind and statuses with. The matcher uses this to exclude candidates
// who are already related.
func (s *GormRelationshipStore) RelatedPartnerIDs(userID uint, kind models.RelationshipKind, statuses []models.RelationshipStatus) ([]uint, error) {
	var rels []models.Relationship
	err := s.db.
		Select("party_a", "party_b").
		Where("kind = ? AND status IN ?", kind, statuses).
		Where("party_a = ? OR party_b = ?", userID, userID).
		Find(&rels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list related partners for user %d: %w", userID, err)
	}

	partners := make([]uint, 0, len(rels))
	for _, rel := range rels {
		partners = append(partners, rel.OtherParty(userID))
	}
	return partners, nil
}
