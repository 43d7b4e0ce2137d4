package relationship

import "campusmatch/backend/internal/models"

// The state machine is pure decision logic: given the current row (nil means
// no relationship), the acting user and the requested transition, it returns
// what to persist or a Rejection. It never touches the store.

// initiateOutcome is what an initiate decision asks the caller to persist.
type initiateOutcome struct {
	relationship models.Relationship

	// deletePrevious is set when a retained declined row must be removed so
	// a fresh pending cycle can start. Declined never mutates back to pending.
	deletePrevious bool
}

// decideInitiate opens a request from sender to receiver, or resolves it
// immediately when both parties initiated toward each other.
//
// Mutual-initiate tie-break: activity pings auto-accept, since symmetric
// interest is exactly the ping goal; connections reject with AlreadyPending
// so the second sender responds to the existing request instead.
func decideInitiate(current *models.Relationship, kind models.RelationshipKind, sender, receiver uint, activityID *uint, message string) (initiateOutcome, error) {
	if sender == receiver {
		return initiateOutcome{}, reject(ReasonSelfTarget)
	}

	if current == nil {
		return initiateOutcome{relationship: newPending(kind, sender, receiver, activityID, message)}, nil
	}

	switch current.Status {
	case models.StatusBlocked:
		return initiateOutcome{}, reject(ReasonBlocked)

	case models.StatusPending:
		if current.Initiator == sender {
			return initiateOutcome{}, reject(ReasonAlreadyPending)
		}
		if kind == models.KindActivityPing {
			updated := *current
			updated.Status = models.StatusAccepted
			updated.Response = message
			return initiateOutcome{relationship: updated}, nil
		}
		return initiateOutcome{}, rejectWith(ReasonAlreadyPending,
			"This user already sent you a request; respond to it instead")

	case models.StatusAccepted:
		return initiateOutcome{}, reject(ReasonAlreadyResolved)

	case models.StatusDeclined:
		// A declined row is retained for history, but the pair stays
		// re-discoverable: re-initiating runs an explicit delete-and-resend
		// cycle through the virtual none state.
		return initiateOutcome{
			relationship:   newPending(kind, sender, receiver, activityID, message),
			deletePrevious: true,
		}, nil

	default:
		// The store only ever writes the four statuses above; anything else
		// is a data fault, not a transition to guess at.
		return initiateOutcome{}, reject(ReasonAlreadyResolved)
	}
}

func newPending(kind models.RelationshipKind, sender, receiver uint, activityID *uint, message string) models.Relationship {
	a, b := models.CanonicalPair(sender, receiver)
	return models.Relationship{
		Kind:       kind,
		PartyA:     a,
		PartyB:     b,
		ActivityID: activityID,
		Initiator:  sender,
		Status:     models.StatusPending,
		Message:    message,
	}
}

// decideRespond accepts or declines a pending request. Responding is a
// one-shot transition: a second call on a resolved row rejects.
func decideRespond(current *models.Relationship, actor uint, accept bool, response string) (models.Relationship, error) {
	if current == nil {
		return models.Relationship{}, reject(ReasonNotFound)
	}
	if !current.Involves(actor) {
		return models.Relationship{}, reject(ReasonUnauthorized)
	}
	switch current.Status {
	case models.StatusBlocked:
		return models.Relationship{}, reject(ReasonBlocked)
	case models.StatusPending:
	default:
		return models.Relationship{}, reject(ReasonAlreadyResolved)
	}
	if actor == current.Initiator {
		return models.Relationship{}, reject(ReasonNotReceiver)
	}

	updated := *current
	if accept {
		updated.Status = models.StatusAccepted
	} else {
		updated.Status = models.StatusDeclined
	}
	updated.Response = response
	return updated, nil
}

// decideCancel allows the initiator to retract a pending request. A nil error
// means the row must be hard-deleted, returning the pair to the none state.
func decideCancel(current *models.Relationship, actor uint) error {
	if current == nil {
		return reject(ReasonNotFound)
	}
	if !current.Involves(actor) {
		return reject(ReasonUnauthorized)
	}
	if current.Status != models.StatusPending {
		return reject(ReasonAlreadyResolved)
	}
	if actor != current.Initiator {
		return reject(ReasonNotInitiator)
	}
	return nil
}

// decideBlock moves a pending or accepted relationship to the terminal blocked
// state. Only the receiving side of the current cycle may block; unblocking is
// a privileged operation outside the engine.
func decideBlock(current *models.Relationship, actor uint) (models.Relationship, error) {
	if current == nil {
		return models.Relationship{}, reject(ReasonNotFound)
	}
	if !current.Involves(actor) {
		return models.Relationship{}, reject(ReasonUnauthorized)
	}
	switch current.Status {
	case models.StatusBlocked:
		return models.Relationship{}, reject(ReasonBlocked)
	case models.StatusPending, models.StatusAccepted:
	default:
		return models.Relationship{}, reject(ReasonAlreadyResolved)
	}
	if actor == current.Initiator {
		return models.Relationship{}, reject(ReasonNotReceiver)
	}

	updated := *current
	updated.Status = models.StatusBlocked
	return updated, nil
}

// checkPingBack validates that actor may send a reciprocal ping for the
// original row. The reciprocal itself is composed by the service from an
// initiate decision, so this only guards the original.
func checkPingBack(original *models.Relationship, actor uint) error {
	if original == nil {
		return reject(ReasonNotFound)
	}
	if original.Kind != models.KindActivityPing {
		return reject(ReasonInvalidKind)
	}
	if !original.Involves(actor) {
		return reject(ReasonUnauthorized)
	}
	if original.PingedBack {
		return reject(ReasonAlreadyPingedBack)
	}
	if actor == original.Initiator {
		return reject(ReasonNotReceiver)
	}
	switch original.Status {
	case models.StatusAccepted, models.StatusPending:
		return nil
	case models.StatusBlocked:
		return reject(ReasonBlocked)
	default:
		return reject(ReasonAlreadyResolved)
	}
}

// decideRemoveInterest lets either party withdraw from an accepted activity
// ping ("not interested anymore"). A nil error means the row is deleted; this
// models withdrawal, not rejection.
func decideRemoveInterest(current *models.Relationship, actor uint) error {
	if current == nil {
		return reject(ReasonNotFound)
	}
	if current.Kind != models.KindActivityPing {
		return reject(ReasonInvalidKind)
	}
	if !current.Involves(actor) {
		return reject(ReasonUnauthorized)
	}
	switch current.Status {
	case models.StatusAccepted:
		return nil
	case models.StatusPending:
		return rejectWith(ReasonAlreadyPending, "This ping is still pending; unsend it instead")
	case models.StatusBlocked:
		return reject(ReasonBlocked)
	default:
		return reject(ReasonAlreadyResolved)
	}
}
