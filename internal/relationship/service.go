package relationship

import (
	"errors"

	"campusmatch/backend/internal/models"
	"campusmatch/backend/internal/store"
)

// Service orchestrates relationship transitions: it authorizes the actor,
// loads the current row, runs the state machine, persists the outcome and
// projects it for the caller. Every operation holds the pair lock for the
// whole load-transition-persist sequence, so the store never sees two
// in-flight transitions for the same pair.
type Service struct {
	store store.RelationshipStore
	locks *PairLock
}

// RelationshipLists groups a user's relationships by direction.
type RelationshipLists struct {
	Sent     []View `json:"sent"`
	Received []View `json:"received"`
}

// NewService creates a new relationship Service.
func NewService(st store.RelationshipStore) *Service {
	return &Service{
		store: st,
		locks: NewPairLock(),
	}
}

// Initiate opens a request from sender to receiver. For activity pings where
// the receiver already has a pending ping toward the sender on the same
// activity, the existing row resolves to accepted instead of a second row
// being created.
func (s *Service) Initiate(kind models.RelationshipKind, senderID, receiverID uint, activityID *uint, message string) (*View, error) {
	if senderID == receiverID {
		return nil, reject(ReasonSelfTarget)
	}
	if kind == models.KindConnection {
		activityID = nil // connections are never activity-scoped
	}

	unlock := s.locks.Lock(senderID, receiverID)
	defer unlock()

	current, err := s.store.Get(kind, senderID, receiverID, activityID)
	if err != nil {
		return nil, err
	}

	outcome, err := decideInitiate(current, kind, senderID, receiverID, activityID, message)
	if err != nil {
		return nil, err
	}

	if outcome.deletePrevious {
		if err := s.store.Delete(current.ID); err != nil {
			return nil, err
		}
	}

	rel := outcome.relationship
	if err := s.store.Save(&rel); err != nil {
		return nil, err
	}

	view := Project(rel, senderID)
	return &view, nil
}

// Respond accepts or declines a pending request on behalf of its receiver.
func (s *Service) Respond(relationshipID, actorID uint, accept bool, response string) (*View, error) {
	rel, unlock, err := s.loadLocked(relationshipID, actorID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	updated, err := decideRespond(rel, actorID, accept, response)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(&updated); err != nil {
		return nil, err
	}

	view := Project(updated, actorID)
	return &view, nil
}

// Cancel lets the initiator retract a pending request. The row is
// hard-deleted; for activity pings this is the "unsend" operation.
func (s *Service) Cancel(relationshipID, actorID uint) error {
	rel, unlock, err := s.loadLocked(relationshipID, actorID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := decideCancel(rel, actorID); err != nil {
		return err
	}
	return s.store.Delete(rel.ID)
}

// Block moves a pending or accepted relationship to the terminal blocked
// state. Only the receiving side may block.
func (s *Service) Block(relationshipID, actorID uint) (*View, error) {
	rel, unlock, err := s.loadLocked(relationshipID, actorID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	updated, err := decideBlock(rel, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(&updated); err != nil {
		return nil, err
	}

	view := Project(updated, actorID)
	return &view, nil
}

// RemoveInterest withdraws either party from an accepted activity ping and
// deletes the row. Connections cannot be removed this way.
func (s *Service) RemoveInterest(relationshipID, actorID uint) error {
	rel, unlock, err := s.loadLocked(relationshipID, actorID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := decideRemoveInterest(rel, actorID); err != nil {
		return err
	}
	return s.store.Delete(rel.ID)
}

// PingBack sends the reciprocal ping for an original ping the actor received,
// optionally targeting a different activity, and marks the original as pinged
// back. A reciprocal on the same activity resolves on the original row itself:
// pending originals auto-accept, accepted ones only gain the flag.
func (s *Service) PingBack(originalID, actorID uint, activityID *uint, message string) (*View, error) {
	orig, unlock, err := s.loadLocked(originalID, actorID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := checkPingBack(orig, actorID); err != nil {
		return nil, err
	}

	target := orig.ActivityID
	if activityID != nil {
		target = activityID
	}

	if sameActivity(orig.ActivityID, target) {
		updated := *orig
		updated.PingedBack = true
		if updated.Status == models.StatusPending {
			updated.Status = models.StatusAccepted
			updated.Response = message
		}
		if err := s.store.Save(&updated); err != nil {
			return nil, err
		}
		view := Project(updated, actorID)
		return &view, nil
	}

	// Resolve the reciprocal first; the original is only marked pinged back
	// once the reciprocal is settled, so a rejected ping-back leaves the
	// original untouched.
	other := orig.OtherParty(actorID)
	current, err := s.store.Get(models.KindActivityPing, actorID, other, target)
	if err != nil {
		return nil, err
	}

	result := current
	outcome, err := decideInitiate(current, models.KindActivityPing, actorID, other, target, message)
	if err != nil {
		// A ping the actor already sent, or an accepted ping, on the target
		// activity already expresses the reciprocal; the ping-back still
		// counts, so surface that row.
		var rej *Rejection
		if !errors.As(err, &rej) || current == nil ||
			(rej.Reason != ReasonAlreadyResolved && rej.Reason != ReasonAlreadyPending) {
			return nil, err
		}
	} else {
		if outcome.deletePrevious {
			if err := s.store.Delete(current.ID); err != nil {
				return nil, err
			}
		}
		rel := outcome.relationship
		if err := s.store.Save(&rel); err != nil {
			return nil, err
		}
		result = &rel
	}

	updated := *orig
	updated.PingedBack = true
	if err := s.store.Save(&updated); err != nil {
		return nil, err
	}

	view := Project(*result, actorID)
	return &view, nil
}

// ListForUser returns the user's relationships of the given kind, split into
// the ones they sent and the ones they received.
func (s *Service) ListForUser(userID uint, kind models.RelationshipKind, status *models.RelationshipStatus) (*RelationshipLists, error) {
	rels, err := s.store.ListForUser(userID, kind, status)
	if err != nil {
		return nil, err
	}

	lists := &RelationshipLists{
		Sent:     []View{},
		Received: []View{},
	}
	for _, rel := range rels {
		view := Project(rel, userID)
		if view.IsSender {
			lists.Sent = append(lists.Sent, view)
		} else {
			lists.Received = append(lists.Received, view)
		}
	}
	return lists, nil
}

// loadLocked fetches the relationship, checks the actor is a party, then
// acquires the pair lock and reloads so the decision runs against the state a
// concurrent transition may have just written.
func (s *Service) loadLocked(relationshipID, actorID uint) (*models.Relationship, func(), error) {
	rel, err := s.store.GetByID(relationshipID)
	if err != nil {
		return nil, nil, err
	}
	if rel == nil {
		return nil, nil, reject(ReasonNotFound)
	}
	if !rel.Involves(actorID) {
		return nil, nil, reject(ReasonUnauthorized)
	}

	unlock := s.locks.Lock(rel.PartyA, rel.PartyB)

	rel, err = s.store.GetByID(relationshipID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	if rel == nil {
		unlock()
		return nil, nil, reject(ReasonNotFound)
	}
	return rel, unlock, nil
}

func sameActivity(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
