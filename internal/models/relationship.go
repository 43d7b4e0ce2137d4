package models

import "time"

// RelationshipKind distinguishes the two request flows that share one engine.
type RelationshipKind string

const (
	// KindConnection is the bidirectional "friend request" flow.
	KindConnection RelationshipKind = "connection"

	// KindActivityPing expresses interest in doing a specific activity together.
	KindActivityPing RelationshipKind = "activity_ping"
)

// RelationshipStatus defines the state of a relationship between two users.
// There is no "none" value: no row means no relationship.
type RelationshipStatus string

const (
	StatusPending  RelationshipStatus = "pending"
	StatusAccepted RelationshipStatus = "accepted"
	StatusDeclined RelationshipStatus = "declined"
	StatusBlocked  RelationshipStatus = "blocked"
)

// Relationship is the single record for an unordered pair of users and a kind.
// PartyA and PartyB are stored in canonical order (smaller ID first) so a pair
// has exactly one row per kind no matter who initiated; Initiator records the
// direction of the current pending cycle. ActivityID is set for activity pings
// only, so a pair may hold one ping row per activity but at most one connection.
type Relationship struct {
	ID         uint               `gorm:"primaryKey"`
	Kind       RelationshipKind   `gorm:"type:varchar(20);not null;uniqueIndex:idx_relationship_pair_key"`
	PartyA     uint               `gorm:"not null;uniqueIndex:idx_relationship_pair_key"`
	PartyB     uint               `gorm:"not null;uniqueIndex:idx_relationship_pair_key"`
	ActivityID *uint              `gorm:"uniqueIndex:idx_relationship_pair_key"`
	Initiator  uint               `gorm:"not null"`
	Status     RelationshipStatus `gorm:"type:varchar(20);not null"`
	Message    string             `gorm:"type:text"`
	Response   string             `gorm:"type:text"`
	PingedBack bool               `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	PartyAUser User `gorm:"foreignKey:PartyA;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PartyBUser User `gorm:"foreignKey:PartyB;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// CanonicalPair returns the two user IDs in storage order, smaller first.
func CanonicalPair(u, v uint) (uint, uint) {
	if v < u {
		return v, u
	}
	return u, v
}

// Involves reports whether userID is one of the two parties.
func (r *Relationship) Involves(userID uint) bool {
	return r.PartyA == userID || r.PartyB == userID
}

// OtherParty returns the party that is not userID. The caller must have
// checked Involves first.
func (r *Relationship) OtherParty(userID uint) uint {
	if r.PartyA == userID {
		return r.PartyB
	}
	return r.PartyA
}

// Receiver returns the party the current pending cycle was sent to.
func (r *Relationship) Receiver() uint {
	return r.OtherParty(r.Initiator)
}
