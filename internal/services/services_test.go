package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"social-backend/internal/models"
	"social-backend/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testClock hands out strictly increasing times so newest-first ordering
// is deterministic
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// recordingDeliverer collects delivered notifications
type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []*models.Notification
	err       error
}

func (d *recordingDeliverer) Deliver(_ context.Context, n *models.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, n)
	return d.err
}

func (d *recordingDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.delivered)
}

type testEnv struct {
	db            *memory.DB
	auth          *AuthService
	users         *UserService
	posts         *PostService
	notifications *NotificationService
	search        *SearchService
	delivered     *recordingDeliverer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := newTestClock()
	db := memory.New()
	delivered := &recordingDeliverer{}

	notifications := NewNotificationService(db.Notifications(), delivered)
	notifications.now = clock.Now
	t.Cleanup(notifications.Wait)

	auth := NewAuthService(db.Users(), "test-secret")
	auth.bcryptCost = bcrypt.MinCost
	auth.now = clock.Now

	posts := NewPostService(db.Posts(), db.Users(), notifications)
	posts.now = clock.Now

	return &testEnv{
		db:            db,
		auth:          auth,
		users:         NewUserService(db.Users(), db.Posts(), auth, notifications),
		posts:         posts,
		notifications: notifications,
		search:        NewSearchService(db.Users(), db.Posts()),
		delivered:     delivered,
	}
}

func (e *testEnv) signup(t *testing.T, username string) *AuthUser {
	t.Helper()
	result, err := e.auth.Signup(context.Background(), username, username+"@example.com", "password123")
	require.NoError(t, err)
	return &result.User
}

func (e *testEnv) post(t *testing.T, userID, text string) *models.Post {
	t.Helper()
	post, err := e.posts.CreatePost(context.Background(), userID, text, "")
	require.NoError(t, err)
	return post
}

func (e *testEnv) user(t *testing.T, id string) *models.User {
	t.Helper()
	user, err := e.users.GetUser(context.Background(), id)
	require.NoError(t, err)
	return user
}
