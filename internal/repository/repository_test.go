package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"social-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to TEST_DATABASE_URL and migrates it, or skips
func testDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, Migrate(ctx, db))
	return db
}

func createUser(t *testing.T, repo *UserRepository, prefix string) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     prefix + "_" + suffix,
		Email:        prefix + "_" + suffix + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func createPost(t *testing.T, repo *PostRepository, authorID, text string) *models.Post {
	t.Helper()
	now := time.Now()
	post := &models.Post{ID: uuid.NewString(), UserID: authorID, Text: text, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func TestUserRepository(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	dup := *alice
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, users.Create(ctx, &dup), ErrDuplicate)

	_, err := users.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := users.EmailExists(ctx, alice.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, users.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, users.Follow(ctx, alice.ID, bob.ID))

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, got.Following)
	got, err = users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, got.Followers)

	require.NoError(t, users.Unfollow(ctx, alice.ID, bob.ID))
	got, err = users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Following)
	got, err = users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Followers)

	_, err = users.UpdateProfile(ctx, alice.ID, bob.Username, "")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepository_SearchEscapesWildcards(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, users, "pct")

	found, err := users.SearchByUsername(ctx, "%", 10)
	require.NoError(t, err)
	for _, u := range found {
		assert.Contains(t, u.Username, "%")
	}

	found, err = users.SearchByUsername(ctx, user.Username[4:], 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, user.ID, found[0].ID)
}

func TestPostRepository(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	post := createPost(t, posts, alice.ID, "hello repository")

	authorID, liked, err := posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, authorID)
	assert.True(t, liked)

	_, liked, err = posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	_, _, err = posts.ToggleLike(ctx, uuid.NewString(), bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	comment := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		UserID:    bob.ID,
		Username:  bob.Username,
		Text:      "nice",
		CreatedAt: time.Now(),
	}
	require.NoError(t, posts.AddComment(ctx, comment))

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Username, got.User.Username)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, bob.ID, got.Comments[0].User.ID)

	require.NoError(t, posts.DeleteComment(ctx, post.ID, comment.ID))
	assert.ErrorIs(t, posts.DeleteComment(ctx, post.ID, comment.ID), ErrNotFound)

	count, err := posts.CountByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, posts.Delete(ctx, post.ID))
	_, err = posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationRepository(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	notifications := NewNotificationRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	post := createPost(t, posts, alice.ID, "hello")

	newNotification := func(kind string, postID *string) *models.Notification {
		now := time.Now()
		return &models.Notification{
			ID:        uuid.NewString(),
			UserTo:    alice.ID,
			UserFrom:  bob.Summary(),
			PostID:    postID,
			Type:      kind,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	require.NoError(t, notifications.Create(ctx, newNotification(models.NotificationLike, &post.ID)))

	created, err := notifications.CreateFollowOnce(ctx, newNotification(models.NotificationFollow, nil))
	require.NoError(t, err)
	assert.True(t, created)
	created, err = notifications.CreateFollowOnce(ctx, newNotification(models.NotificationFollow, nil))
	require.NoError(t, err)
	assert.False(t, created)

	list, err := notifications.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.NotificationFollow, list[0].Type)
	require.NotNil(t, list[1].Post)
	assert.Equal(t, "hello", list[1].Post.Text)
	assert.Equal(t, bob.Username, list[1].UserFrom.Username)

	deleted, err := notifications.DeleteByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	updated, err := notifications.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)

	unread, err := notifications.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	require.NoError(t, notifications.DeleteFollow(ctx, alice.ID, bob.ID))
	list, err = notifications.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%alice%", containsPattern("alice"))
	assert.Equal(t, `%50\%%`, containsPattern("50%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, containsPattern(`c:\dir`))
}
