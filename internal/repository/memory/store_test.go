package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/recapp-backend/internal/domain"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestProfilesAreCopied(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithClock(fixedClock()))
	profiles := store.Profiles()

	p := &domain.Profile{UserID: "u1", FullName: "Ana", Sports: []string{"Tennis"}}
	require.NoError(t, profiles.Create(ctx, p))
	p.Sports[0] = "Soccer"

	got, err := profiles.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tennis"}, got.Sports)

	got.FullName = "changed"
	again, err := profiles.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.FullName)

	assert.ErrorIs(t, profiles.Create(ctx, &domain.Profile{UserID: "u1"}), domain.ErrProfileAlreadyExists)
}

func TestResolveChecks(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithClock(fixedClock()))
	requests := store.FriendRequests()

	req, created, err := requests.CreatePending(ctx, "a", "b")
	require.NoError(t, err)
	require.True(t, created)

	_, err = requests.Resolve(ctx, "missing", "b", domain.FriendRequestAccepted)
	assert.ErrorIs(t, err, domain.ErrFriendRequestNotFound)

	_, err = requests.Resolve(ctx, req.ID, "a", domain.FriendRequestAccepted)
	assert.ErrorIs(t, err, domain.ErrNotRequestRecipient)

	resolved, err := requests.Resolve(ctx, req.ID, "b", domain.FriendRequestRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendRequestRejected, resolved.Status)
	require.NotNil(t, resolved.RespondedAt)

	_, err = requests.Resolve(ctx, req.ID, "b", domain.FriendRequestAccepted)
	assert.ErrorIs(t, err, domain.ErrRequestNotPending)

	friends, err := store.Friendships().AreFriends(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, friends)
}

func TestCancelledContextIsTransient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Profiles().GetByUserID(ctx, "u1")
	assert.Equal(t, domain.KindTransient, domain.KindOf(err))
}

func TestListMatchablePagesAfterUserID(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithClock(fixedClock()))
	profiles := store.Profiles()

	for _, id := range []string{"d", "a", "c", "b", "e"} {
		require.NoError(t, profiles.Create(ctx, &domain.Profile{UserID: id, FullName: id}))
		s := domain.Survey{Age: 21, WeightLbs: 150, HeightFeet: 5, HeightInches: 8,
			GymLevel: domain.GymLevelBeginner, WorkoutGoal: "Getting fit", Sports: []string{"Tennis"}}
		require.NoError(t, s.Normalize())
		_, err := profiles.CompleteSurvey(ctx, id, s)
		require.NoError(t, err)
	}

	var seen []string
	after := ""
	for {
		page, err := profiles.ListMatchable(ctx, after, []string{"c"}, 2)
		require.NoError(t, err)
		for _, p := range page {
			seen = append(seen, p.UserID)
		}
		if len(page) < 2 {
			break
		}
		after = page[len(page)-1].UserID
	}
	assert.Equal(t, []string{"a", "b", "d", "e"}, seen)
}
