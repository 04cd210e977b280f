package services

import (
	"context"
	"testing"

	"social-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, alice.ID, "  hello world  ", "")
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Text)
	assert.Equal(t, alice.ID, post.User.ID)
	assert.Equal(t, "alice", post.User.Username)
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)

	imageOnly, err := env.posts.CreatePost(ctx, alice.ID, "", "https://img.example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/a.jpg", imageOnly.ImageURL)

	_, err = env.posts.CreatePost(ctx, alice.ID, "  ", "")
	assert.ErrorIs(t, err, ErrEmptyPost)
}

func TestToggleLike_TwiceRestores(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	post := env.post(t, alice.ID, "hello")
	ctx := context.Background()

	liked, err := env.posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, liked.Likes)
	assert.True(t, liked.HasLike(bob.ID))

	unliked, err := env.posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)

	notifications, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1, "only the like-add transition notifies")
	assert.Equal(t, models.NotificationLike, notifications[0].Type)
	assert.Equal(t, bob.ID, notifications[0].UserFrom.ID)
	require.NotNil(t, notifications[0].Post)
	assert.Equal(t, post.ID, notifications[0].Post.ID)
	env.notifications.Wait()
	assert.Equal(t, 1, env.delivered.count())
}

func TestToggleLike_LikeCountMatchesLikers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	post := env.post(t, alice.ID, "hello")
	ctx := context.Background()

	var last *models.Post
	for _, name := range []string{"bob", "carol", "dave"} {
		user := env.signup(t, name)
		var err error
		last, err = env.posts.ToggleLike(ctx, post.ID, user.ID)
		require.NoError(t, err)
	}
	assert.Len(t, last.Likes, 3)
}

func TestToggleLike_OwnPostDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	post := env.post(t, alice.ID, "hello")

	_, err := env.posts.ToggleLike(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)

	count, err := env.notifications.UnreadCount(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestToggleLike_MissingPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	_, err := env.posts.ToggleLike(context.Background(), uuid.NewString(), alice.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestAddComment_SnapshotsCommenter(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	post := env.post(t, alice.ID, "hello")
	ctx := context.Background()

	commented, err := env.posts.AddComment(ctx, post.ID, bob.ID, " nice ")
	require.NoError(t, err)
	require.Len(t, commented.Comments, 1)
	assert.Equal(t, "nice", commented.Comments[0].Text)
	assert.Equal(t, "bob", commented.Comments[0].Username)

	renamed := "robert"
	_, err = env.users.UpdateProfile(ctx, bob.ID, UpdateProfileRequest{Username: &renamed})
	require.NoError(t, err)

	reloaded, err := env.posts.getPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", reloaded.Comments[0].Username, "snapshot is not rewritten")
	assert.Equal(t, "robert", reloaded.Comments[0].User.Username, "live author is populated")

	notifications, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationComment, notifications[0].Type)
}

func TestAddComment_Validation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	post := env.post(t, alice.ID, "hello")
	ctx := context.Background()

	_, err := env.posts.AddComment(ctx, post.ID, alice.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyComment)

	_, err = env.posts.AddComment(ctx, uuid.NewString(), alice.ID, "hi")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = env.posts.AddComment(ctx, post.ID, alice.ID, "own comment")
	require.NoError(t, err)
	count, err := env.notifications.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFeeds(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	carol := env.signup(t, "carol")
	ctx := context.Background()

	first := env.post(t, bob.ID, "bob first")
	second := env.post(t, carol.ID, "carol")
	third := env.post(t, alice.ID, "alice")
	fourth := env.post(t, bob.ID, "bob second")

	_, err := env.users.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	explore, err := env.posts.Explore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{fourth.ID, third.ID, second.ID, first.ID}, postIDs(explore))

	following, err := env.posts.FollowingFeed(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{fourth.ID, third.ID, first.ID}, postIDs(following))

	byBob, err := env.posts.ByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{fourth.ID, first.ID}, postIDs(byBob))

	_, err = env.posts.ByUser(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestToggleSave(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	post := env.post(t, alice.ID, "hello")
	ctx := context.Background()

	saved, err := env.posts.Saved(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)

	ids, err := env.posts.ToggleSave(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{post.ID}, ids)

	saved, err = env.posts.Saved(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{post.ID}, postIDs(saved))

	ids, err = env.posts.ToggleSave(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = env.posts.ToggleSave(ctx, uuid.NewString(), alice.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePost_RemovesNotifications(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	post := env.post(t, alice.ID, "hello")
	other := env.post(t, alice.ID, "other")
	ctx := context.Background()

	_, err := env.posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.posts.AddComment(ctx, post.ID, bob.ID, "nice")
	require.NoError(t, err)
	_, err = env.posts.ToggleLike(ctx, other.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.users.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	before, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, before, 4)

	assert.ErrorIs(t, env.posts.DeletePost(ctx, post.ID, bob.ID), ErrNotAuthorized)
	require.NoError(t, env.posts.DeletePost(ctx, post.ID, alice.ID))

	after, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, after, 2)
	for _, n := range after {
		if n.Post != nil {
			assert.NotEqual(t, post.ID, n.Post.ID)
		}
	}

	_, err = env.posts.getPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, env.posts.DeletePost(ctx, post.ID, alice.ID), ErrPostNotFound)
}

func TestDeleteComment(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	post := env.post(t, alice.ID, "hello")
	ctx := context.Background()

	commented, err := env.posts.AddComment(ctx, post.ID, bob.ID, "nice")
	require.NoError(t, err)
	commentID := commented.Comments[0].ID

	_, err = env.posts.DeleteComment(ctx, post.ID, commentID, alice.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized, "post owner cannot delete another user's comment")

	_, err = env.posts.DeleteComment(ctx, post.ID, uuid.NewString(), bob.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)

	_, err = env.posts.DeleteComment(ctx, uuid.NewString(), commentID, bob.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	updated, err := env.posts.DeleteComment(ctx, post.ID, commentID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Comments)

	count, err := env.notifications.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func postIDs(posts []*models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
