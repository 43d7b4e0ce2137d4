package relationship

import (
	"testing"

	"campusmatch/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRow(kind models.RelationshipKind, initiator, receiver uint) *models.Relationship {
	a, b := models.CanonicalPair(initiator, receiver)
	return &models.Relationship{
		ID:        1,
		Kind:      kind,
		PartyA:    a,
		PartyB:    b,
		Initiator: initiator,
		Status:    models.StatusPending,
	}
}

func rowWithStatus(kind models.RelationshipKind, initiator, receiver uint, status models.RelationshipStatus) *models.Relationship {
	rel := pendingRow(kind, initiator, receiver)
	rel.Status = status
	return rel
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	rej, ok := err.(*Rejection)
	require.True(t, ok, "expected a Rejection, got %v", err)
	return rej.Reason
}

func TestDecideInitiateSelfTarget(t *testing.T) {
	_, err := decideInitiate(nil, models.KindConnection, 1, 1, nil, "")
	assert.Equal(t, ReasonSelfTarget, reasonOf(t, err))
}

func TestDecideInitiateFromNone(t *testing.T) {
	outcome, err := decideInitiate(nil, models.KindConnection, 7, 3, nil, "hey")
	require.NoError(t, err)

	rel := outcome.relationship
	assert.False(t, outcome.deletePrevious)
	assert.Equal(t, models.StatusPending, rel.Status)
	assert.Equal(t, uint(7), rel.Initiator)
	assert.Equal(t, uint(3), rel.PartyA) // canonical order, smaller ID first
	assert.Equal(t, uint(7), rel.PartyB)
	assert.Equal(t, "hey", rel.Message)
}

func TestDecideInitiateDuplicateFromSameSender(t *testing.T) {
	current := pendingRow(models.KindConnection, 1, 2)

	_, err := decideInitiate(current, models.KindConnection, 1, 2, nil, "")
	assert.Equal(t, ReasonAlreadyPending, reasonOf(t, err))
}

func TestDecideInitiateMutualConnectionRejects(t *testing.T) {
	// B initiates while A's connection request is pending: B must respond to
	// the existing request, not open a second one.
	current := pendingRow(models.KindConnection, 1, 2)

	_, err := decideInitiate(current, models.KindConnection, 2, 1, nil, "")
	rej, ok := err.(*Rejection)
	require.True(t, ok)
	assert.Equal(t, ReasonAlreadyPending, rej.Reason)
	assert.NotEmpty(t, rej.Detail)
}

func TestDecideInitiateMutualPingAutoAccepts(t *testing.T) {
	activityID := uint(9)
	current := pendingRow(models.KindActivityPing, 1, 2)
	current.ActivityID = &activityID

	outcome, err := decideInitiate(current, models.KindActivityPing, 2, 1, &activityID, "me too")
	require.NoError(t, err)

	assert.Equal(t, models.StatusAccepted, outcome.relationship.Status)
	assert.Equal(t, uint(1), outcome.relationship.Initiator) // original sender keeps the role
	assert.Equal(t, "me too", outcome.relationship.Response)
}

func TestDecideInitiateOnAccepted(t *testing.T) {
	current := rowWithStatus(models.KindConnection, 1, 2, models.StatusAccepted)

	_, err := decideInitiate(current, models.KindConnection, 1, 2, nil, "")
	assert.Equal(t, ReasonAlreadyResolved, reasonOf(t, err))
}

func TestDecideInitiateOnBlocked(t *testing.T) {
	current := rowWithStatus(models.KindConnection, 1, 2, models.StatusBlocked)

	for _, sender := range []uint{1, 2} {
		_, err := decideInitiate(current, models.KindConnection, sender, 3-sender, nil, "")
		assert.Equal(t, ReasonBlocked, reasonOf(t, err))
	}
}

func TestDecideInitiateOnUnknownStatus(t *testing.T) {
	current := rowWithStatus(models.KindConnection, 1, 2, models.RelationshipStatus("corrupt"))

	_, err := decideInitiate(current, models.KindConnection, 1, 2, nil, "")
	assert.Equal(t, ReasonAlreadyResolved, reasonOf(t, err))
}

func TestDecideInitiateAfterDecline(t *testing.T) {
	current := rowWithStatus(models.KindConnection, 1, 2, models.StatusDeclined)

	outcome, err := decideInitiate(current, models.KindConnection, 1, 2, nil, "second try")
	require.NoError(t, err)

	assert.True(t, outcome.deletePrevious)
	assert.Equal(t, models.StatusPending, outcome.relationship.Status)
	assert.Equal(t, "second try", outcome.relationship.Message)
	assert.Zero(t, outcome.relationship.ID) // fresh row, not a mutation of the declined one
}

func TestDecideRespond(t *testing.T) {
	tests := []struct {
		name       string
		current    *models.Relationship
		actor      uint
		accept     bool
		wantStatus models.RelationshipStatus
		wantReason Reason
	}{
		{
			name:       "receiver accepts",
			current:    pendingRow(models.KindConnection, 1, 2),
			actor:      2,
			accept:     true,
			wantStatus: models.StatusAccepted,
		},
		{
			name:       "receiver declines",
			current:    pendingRow(models.KindConnection, 1, 2),
			actor:      2,
			accept:     false,
			wantStatus: models.StatusDeclined,
		},
		{
			name:       "initiator cannot respond to own request",
			current:    pendingRow(models.KindConnection, 1, 2),
			actor:      1,
			accept:     true,
			wantReason: ReasonNotReceiver,
		},
		{
			name:       "outsider is rejected",
			current:    pendingRow(models.KindConnection, 1, 2),
			actor:      5,
			accept:     true,
			wantReason: ReasonUnauthorized,
		},
		{
			name:       "responding twice is a one-shot violation",
			current:    rowWithStatus(models.KindConnection, 1, 2, models.StatusAccepted),
			actor:      2,
			accept:     false,
			wantReason: ReasonAlreadyResolved,
		},
		{
			name:       "blocked rows cannot be responded to",
			current:    rowWithStatus(models.KindConnection, 1, 2, models.StatusBlocked),
			actor:      2,
			accept:     true,
			wantReason: ReasonBlocked,
		},
		{
			name:       "missing row",
			current:    nil,
			actor:      2,
			accept:     true,
			wantReason: ReasonNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := decideRespond(tt.current, tt.actor, tt.accept, "ok")
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reasonOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, updated.Status)
			assert.Equal(t, "ok", updated.Response)
		})
	}
}

func TestDecideCancel(t *testing.T) {
	tests := []struct {
		name       string
		current    *models.Relationship
		actor      uint
		wantReason Reason
	}{
		{name: "initiator cancels pending", current: pendingRow(models.KindActivityPing, 1, 2), actor: 1},
		{name: "receiver cannot cancel", current: pendingRow(models.KindActivityPing, 1, 2), actor: 2, wantReason: ReasonNotInitiator},
		{name: "outsider is rejected", current: pendingRow(models.KindActivityPing, 1, 2), actor: 9, wantReason: ReasonUnauthorized},
		{name: "accepted cannot be cancelled", current: rowWithStatus(models.KindConnection, 1, 2, models.StatusAccepted), actor: 1, wantReason: ReasonAlreadyResolved},
		{name: "missing row", current: nil, actor: 1, wantReason: ReasonNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decideCancel(tt.current, tt.actor)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reasonOf(t, err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDecideBlock(t *testing.T) {
	tests := []struct {
		name       string
		current    *models.Relationship
		actor      uint
		wantReason Reason
	}{
		{name: "receiver blocks pending", current: pendingRow(models.KindConnection, 1, 2), actor: 2},
		{name: "receiver blocks accepted", current: rowWithStatus(models.KindConnection, 1, 2, models.StatusAccepted), actor: 2},
		{name: "initiator cannot block", current: pendingRow(models.KindConnection, 1, 2), actor: 1, wantReason: ReasonNotReceiver},
		{name: "declined cannot be blocked", current: rowWithStatus(models.KindConnection, 1, 2, models.StatusDeclined), actor: 2, wantReason: ReasonAlreadyResolved},
		{name: "already blocked", current: rowWithStatus(models.KindConnection, 1, 2, models.StatusBlocked), actor: 2, wantReason: ReasonBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := decideBlock(tt.current, tt.actor)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reasonOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StatusBlocked, updated.Status)
		})
	}
}

func TestCheckPingBack(t *testing.T) {
	pingedBack := pendingRow(models.KindActivityPing, 1, 2)
	pingedBack.PingedBack = true

	tests := []struct {
		name       string
		original   *models.Relationship
		actor      uint
		wantReason Reason
	}{
		{name: "receiver of pending ping", original: pendingRow(models.KindActivityPing, 1, 2), actor: 2},
		{name: "receiver of accepted ping", original: rowWithStatus(models.KindActivityPing, 1, 2, models.StatusAccepted), actor: 2},
		{name: "sender cannot ping back own ping", original: pendingRow(models.KindActivityPing, 1, 2), actor: 1, wantReason: ReasonNotReceiver},
		{name: "connections have no ping back", original: pendingRow(models.KindConnection, 1, 2), actor: 2, wantReason: ReasonInvalidKind},
		{name: "only once per original", original: pingedBack, actor: 2, wantReason: ReasonAlreadyPingedBack},
		{name: "declined ping", original: rowWithStatus(models.KindActivityPing, 1, 2, models.StatusDeclined), actor: 2, wantReason: ReasonAlreadyResolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPingBack(tt.original, tt.actor)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reasonOf(t, err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDecideRemoveInterest(t *testing.T) {
	tests := []struct {
		name       string
		current    *models.Relationship
		actor      uint
		wantReason Reason
	}{
		{name: "either party withdraws from accepted ping", current: rowWithStatus(models.KindActivityPing, 1, 2, models.StatusAccepted), actor: 1},
		{name: "receiver withdraws too", current: rowWithStatus(models.KindActivityPing, 1, 2, models.StatusAccepted), actor: 2},
		{name: "pending pings are unsent, not withdrawn", current: pendingRow(models.KindActivityPing, 1, 2), actor: 1, wantReason: ReasonAlreadyPending},
		{name: "connections are not activity interests", current: rowWithStatus(models.KindConnection, 1, 2, models.StatusAccepted), actor: 1, wantReason: ReasonInvalidKind},
		{name: "outsider is rejected", current: rowWithStatus(models.KindActivityPing, 1, 2, models.StatusAccepted), actor: 7, wantReason: ReasonUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decideRemoveInterest(tt.current, tt.actor)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reasonOf(t, err))
				return
			}
			assert.NoError(t, err)
		})
	}
}
