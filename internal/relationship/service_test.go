package relationship

import (
	"fmt"
	"sync"
	"testing"

	"campusmatch/backend/internal/models"
	"campusmatch/backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, store.RelationshipStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // a fresh pool connection would see an empty in-memory database

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Tag{},
		&models.ActivityPreference{},
		&models.Meetup{},
		&models.Relationship{},
	))

	for i := 1; i <= 4; i++ {
		user := models.User{
			Nickname:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@campus.edu", i),
			PasswordHash: "x",
		}
		require.NoError(t, db.Create(&user).Error)
	}

	st := store.NewGormRelationshipStore(db)
	return NewService(st), st
}

func TestConnectionRequestLifecycle(t *testing.T) {
	svc, _ := newTestService(t)

	sent, err := svc.Initiate(models.KindConnection, 1, 2, nil, "let's study together")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sent.Status)
	assert.True(t, sent.IsSender)
	assert.Equal(t, uint(2), sent.PartnerID)

	accepted, err := svc.Respond(sent.ID, 2, true, "sure")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)
	assert.Equal(t, "sure", accepted.Response)

	// Responding is one-shot.
	_, err = svc.Respond(sent.ID, 2, false, "")
	rej := &Rejection{}
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonAlreadyResolved, rej.Reason)
}

func TestMutualConnectionInitiateRejects(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Initiate(models.KindConnection, 1, 2, nil, "")
	require.NoError(t, err)

	_, err = svc.Initiate(models.KindConnection, 2, 1, nil, "")
	rej := &Rejection{}
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonAlreadyPending, rej.Reason)
}

func TestDeclinedPairCanStartFresh(t *testing.T) {
	svc, st := newTestService(t)

	first, err := svc.Initiate(models.KindConnection, 1, 2, nil, "")
	require.NoError(t, err)

	_, err = svc.Respond(first.ID, 2, false, "not now")
	require.NoError(t, err)

	second, err := svc.Initiate(models.KindConnection, 1, 2, nil, "one more try")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, second.Status)
	assert.NotEqual(t, first.ID, second.ID, "a declined row never mutates back to pending")

	// Exactly one row remains for the pair.
	old, err := st.GetByID(first.ID)
	require.NoError(t, err)
	assert.Nil(t, old)
}

func TestCancelUnsendsPing(t *testing.T) {
	svc, st := newTestService(t)
	activityID := uint(1)

	sent, err := svc.Initiate(models.KindActivityPing, 1, 2, &activityID, "basketball?")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(sent.ID, 1))

	gone, err := st.GetByID(sent.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Receiver cannot cancel what the sender sent.
	sent, err = svc.Initiate(models.KindActivityPing, 1, 2, &activityID, "basketball?")
	require.NoError(t, err)
	err = svc.Cancel(sent.ID, 2)
	rej := &Rejection{}
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonNotInitiator, rej.Reason)
}

func TestConcurrentMutualPingResolvesToOneAcceptedRow(t *testing.T) {
	svc, st := newTestService(t)
	activityID := uint(1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, pair := range [][2]uint{{1, 2}, {2, 1}} {
		wg.Add(1)
		go func(i int, sender, receiver uint) {
			defer wg.Done()
			_, errs[i] = svc.Initiate(models.KindActivityPing, sender, receiver, &activityID, "")
		}(i, pair[0], pair[1])
	}
	wg.Wait()

	// Whichever order the lock grants, both initiations succeed and the pair
	// ends with a single accepted row.
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	rel, err := st.Get(models.KindActivityPing, 1, 2, &activityID)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, models.StatusAccepted, rel.Status)

	rels, err := st.ListForUser(1, models.KindActivityPing, nil)
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}

func TestPingBackOnSameActivityResolvesOriginal(t *testing.T) {
	svc, st := newTestService(t)
	activityID := uint(1)

	sent, err := svc.Initiate(models.KindActivityPing, 1, 2, &activityID, "")
	require.NoError(t, err)

	view, err := svc.PingBack(sent.ID, 2, nil, "count me in")
	require.NoError(t, err)
	assert.Equal(t, sent.ID, view.ID)
	assert.Equal(t, models.StatusAccepted, view.Status)
	assert.True(t, view.PingedBack)

	// Second ping back on the same original is refused.
	_, err = svc.PingBack(sent.ID, 2, nil, "")
	rej := &Rejection{}
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonAlreadyPingedBack, rej.Reason)

	rels, err := st.ListForUser(1, models.KindActivityPing, nil)
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}

func TestPingBackOnDifferentActivityOpensSecondRow(t *testing.T) {
	svc, st := newTestService(t)
	tennis, climbing := uint(1), uint(2)

	sent, err := svc.Initiate(models.KindActivityPing, 1, 2, &tennis, "")
	require.NoError(t, err)
	_, err = svc.Respond(sent.ID, 2, true, "")
	require.NoError(t, err)

	reciprocal, err := svc.PingBack(sent.ID, 2, &climbing, "climbing instead?")
	require.NoError(t, err)
	assert.NotEqual(t, sent.ID, reciprocal.ID)
	assert.Equal(t, &climbing, reciprocal.ActivityID)
	assert.Equal(t, models.StatusPending, reciprocal.Status)
	assert.True(t, reciprocal.IsSender)

	original, err := st.GetByID(sent.ID)
	require.NoError(t, err)
	require.NotNil(t, original)
	assert.True(t, original.PingedBack)
	assert.Equal(t, models.StatusAccepted, original.Status)
}

func TestPingBackWithPendingReciprocalOnTargetActivity(t *testing.T) {
	svc, st := newTestService(t)
	tennis, climbing := uint(1), uint(2)

	sent, err := svc.Initiate(models.KindActivityPing, 1, 2, &tennis, "")
	require.NoError(t, err)
	reciprocal, err := svc.Initiate(models.KindActivityPing, 2, 1, &climbing, "")
	require.NoError(t, err)

	// The actor's own pending climbing ping already expresses the reciprocal,
	// so the ping-back succeeds with that row instead of rejecting.
	view, err := svc.PingBack(sent.ID, 2, &climbing, "")
	require.NoError(t, err)
	assert.Equal(t, reciprocal.ID, view.ID)
	assert.Equal(t, models.StatusPending, view.Status)
	assert.True(t, view.IsSender)

	original, err := st.GetByID(sent.ID)
	require.NoError(t, err)
	require.NotNil(t, original)
	assert.True(t, original.PingedBack)

	// No third row for the pair.
	rels, err := st.ListForUser(1, models.KindActivityPing, nil)
	require.NoError(t, err)
	assert.Len(t, rels, 2)
}

func TestPingBackRejectionLeavesOriginalUntouched(t *testing.T) {
	svc, st := newTestService(t)
	tennis, climbing := uint(1), uint(2)

	sent, err := svc.Initiate(models.KindActivityPing, 1, 2, &tennis, "")
	require.NoError(t, err)
	reciprocal, err := svc.Initiate(models.KindActivityPing, 2, 1, &climbing, "")
	require.NoError(t, err)
	_, err = svc.Block(reciprocal.ID, 1)
	require.NoError(t, err)

	// The blocked climbing row refuses the reciprocal; the whole operation
	// fails and the original must not be marked pinged back.
	_, err = svc.PingBack(sent.ID, 2, &climbing, "")
	rej := &Rejection{}
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonBlocked, rej.Reason)

	original, err := st.GetByID(sent.ID)
	require.NoError(t, err)
	require.NotNil(t, original)
	assert.False(t, original.PingedBack, "a failed ping-back must not mutate the original")
	assert.Equal(t, models.StatusPending, original.Status)

	// The ping-back stays available once the obstacle is gone.
	view, err := svc.PingBack(sent.ID, 2, nil, "tennis then")
	require.NoError(t, err)
	assert.Equal(t, sent.ID, view.ID)
	assert.Equal(t, models.StatusAccepted, view.Status)
}

func TestBlockIsReceiverOnlyAndTerminal(t *testing.T) {
	svc, _ := newTestService(t)

	sent, err := svc.Initiate(models.KindConnection, 1, 2, nil, "")
	require.NoError(t, err)

	_, err = svc.Block(sent.ID, 1)
	rej := &Rejection{}
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonNotReceiver, rej.Reason)

	blocked, err := svc.Block(sent.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, blocked.Status)

	// Nothing restarts a blocked pair through the engine.
	_, err = svc.Initiate(models.KindConnection, 1, 2, nil, "")
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonBlocked, rej.Reason)

	_, err = svc.Respond(sent.ID, 2, true, "")
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonBlocked, rej.Reason)
}

func TestRemoveInterestIsPingOnly(t *testing.T) {
	svc, st := newTestService(t)
	activityID := uint(1)

	ping, err := svc.Initiate(models.KindActivityPing, 1, 2, &activityID, "")
	require.NoError(t, err)
	_, err = svc.Respond(ping.ID, 2, true, "")
	require.NoError(t, err)

	conn, err := svc.Initiate(models.KindConnection, 1, 2, nil, "")
	require.NoError(t, err)
	_, err = svc.Respond(conn.ID, 2, true, "")
	require.NoError(t, err)

	err = svc.RemoveInterest(conn.ID, 1)
	rej := &Rejection{}
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonInvalidKind, rej.Reason)

	require.NoError(t, svc.RemoveInterest(ping.ID, 2))
	gone, err := st.GetByID(ping.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// The connection is untouched by the withdrawal.
	kept, err := st.GetByID(conn.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, models.StatusAccepted, kept.Status)
}

func TestPingsOnDifferentActivitiesCoexist(t *testing.T) {
	svc, _ := newTestService(t)
	tennis, climbing := uint(1), uint(2)

	_, err := svc.Initiate(models.KindActivityPing, 1, 2, &tennis, "")
	require.NoError(t, err)
	_, err = svc.Initiate(models.KindActivityPing, 1, 2, &climbing, "")
	require.NoError(t, err)

	lists, err := svc.ListForUser(1, models.KindActivityPing, nil)
	require.NoError(t, err)
	assert.Len(t, lists.Sent, 2)
	assert.Empty(t, lists.Received)
}

func TestListForUserSplitsByDirection(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Initiate(models.KindConnection, 1, 2, nil, "")
	require.NoError(t, err)
	_, err = svc.Initiate(models.KindConnection, 3, 1, nil, "")
	require.NoError(t, err)

	lists, err := svc.ListForUser(1, models.KindConnection, nil)
	require.NoError(t, err)
	require.Len(t, lists.Sent, 1)
	require.Len(t, lists.Received, 1)
	assert.Equal(t, uint(2), lists.Sent[0].PartnerID)
	assert.Equal(t, uint(3), lists.Received[0].PartnerID)

	pending := models.StatusPending
	filtered, err := svc.ListForUser(1, models.KindConnection, &pending)
	require.NoError(t, err)
	assert.Len(t, filtered.Sent, 1)

	accepted := models.StatusAccepted
	empty, err := svc.ListForUser(1, models.KindConnection, &accepted)
	require.NoError(t, err)
	assert.Empty(t, empty.Sent)
	assert.Empty(t, empty.Received)
}
