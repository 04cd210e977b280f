package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"social-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAllRead(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	carol := env.signup(t, "carol")
	ctx := context.Background()

	post := env.post(t, alice.ID, "hello")
	bobPost := env.post(t, bob.ID, "bob")
	_, err := env.posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.posts.AddComment(ctx, post.ID, carol.ID, "hi")
	require.NoError(t, err)
	_, err = env.users.ToggleFollow(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = env.posts.ToggleLike(ctx, bobPost.ID, carol.ID)
	require.NoError(t, err)

	count, err := env.notifications.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	updated, err := env.notifications.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	count, err = env.notifications.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	notifications, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	for _, n := range notifications {
		assert.True(t, n.Read)
	}

	// other recipients are untouched
	count, err = env.notifications.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	updated, err = env.notifications.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestList_NewestFirstWithPopulatedFields(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	ctx := context.Background()

	post := env.post(t, alice.ID, "hello")
	_, err := env.posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.users.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	notifications, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)

	assert.Equal(t, models.NotificationFollow, notifications[0].Type)
	assert.Equal(t, models.NotificationLike, notifications[1].Type)
	assert.Equal(t, "bob", notifications[1].UserFrom.Username)
	require.NotNil(t, notifications[1].Post)
	assert.Equal(t, "hello", notifications[1].Post.Text)
}

func TestDeliver_FailuresDoNotFailTheWrite(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	ctx := context.Background()

	failing := &recordingDeliverer{err: errors.New("offline")}
	env.notifications.AddDeliverer(failing)

	post := env.post(t, alice.ID, "hello")
	_, err := env.posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)

	env.notifications.Wait()
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, env.delivered.count())

	count, err := env.notifications.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// blockingDeliverer holds every delivery until release is closed
type blockingDeliverer struct {
	release chan struct{}
	ctxErr  chan error
}

func (d *blockingDeliverer) Deliver(ctx context.Context, _ *models.Notification) error {
	<-d.release
	d.ctxErr <- ctx.Err()
	return nil
}

func TestDeliver_RunsInBackground(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	post := env.post(t, alice.ID, "hello")

	blocking := &blockingDeliverer{release: make(chan struct{}), ctxErr: make(chan error, 1)}
	env.notifications.AddDeliverer(blocking)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := env.posts.ToggleLike(ctx, post.ID, bob.ID)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		close(blocking.release)
		t.Fatal("like waited for notification delivery")
	}

	cancel()
	close(blocking.release)
	env.notifications.Wait()
	assert.NoError(t, <-blocking.ctxErr, "delivery outlives the request context")
}
