package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"social-backend/internal/models"
	"social-backend/internal/repository"
)

// UserRepository stores users in memory
type UserRepository struct {
	db *DB
}

func copyUser(u *models.User) *models.User {
	out := *u
	out.SavedPosts = copyIDs(u.SavedPosts)
	out.Following = copyIDs(u.Following)
	out.Followers = copyIDs(u.Followers)
	if u.PushToken != nil {
		token := *u.PushToken
		out.PushToken = &token
	}
	return &out
}

// Create creates a new user
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return fmt.Errorf("failed to create user: %w", repository.ErrDuplicate)
		}
	}
	r.db.users[user.ID] = copyUser(user)
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to get user: user %w", repository.ErrNotFound)
	}
	return copyUser(user), nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, user := range r.db.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, fmt.Errorf("failed to get user by email: user %w", repository.ErrNotFound)
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, user := range r.db.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// UsernameExists checks if a username is already taken
func (r *UserRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, user := range r.db.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// UpdateProfile sets the username and bio of a user
func (r *UserRepository) UpdateProfile(_ context.Context, id, username, bio string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to update profile: user %w", repository.ErrNotFound)
	}
	for otherID, other := range r.db.users {
		if otherID != id && other.Username == username {
			return nil, fmt.Errorf("failed to update profile: %w", repository.ErrDuplicate)
		}
	}

	user.Username = username
	user.Bio = bio
	user.UpdatedAt = time.Now()
	return copyUser(user), nil
}

// Follow records both sides of a follow relationship
func (r *UserRepository) Follow(_ context.Context, followerID, targetID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if follower, ok := r.db.users[followerID]; ok && !hasID(follower.Following, targetID) {
		follower.Following = append(follower.Following, targetID)
	}
	if target, ok := r.db.users[targetID]; ok && !hasID(target.Followers, followerID) {
		target.Followers = append(target.Followers, followerID)
	}
	return nil
}

// Unfollow removes both sides of a follow relationship
func (r *UserRepository) Unfollow(_ context.Context, followerID, targetID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if follower, ok := r.db.users[followerID]; ok {
		follower.Following = removeID(follower.Following, targetID)
	}
	if target, ok := r.db.users[targetID]; ok {
		target.Followers = removeID(target.Followers, followerID)
	}
	return nil
}

// ToggleSavedPost adds or removes postID from the user's saved posts
func (r *UserRepository) ToggleSavedPost(_ context.Context, userID, postID string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[userID]
	if !ok {
		return nil, fmt.Errorf("failed to toggle saved post: user %w", repository.ErrNotFound)
	}
	if hasID(user.SavedPosts, postID) {
		user.SavedPosts = removeID(user.SavedPosts, postID)
	} else {
		user.SavedPosts = append(user.SavedPosts, postID)
	}
	return copyIDs(user.SavedPosts), nil
}

// SearchByUsername returns up to limit users whose username contains query
func (r *UserRepository) SearchByUsername(_ context.Context, query string, limit int) ([]models.UserSummary, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := []models.UserSummary{}
	for _, user := range r.db.users {
		if containsFold(user.Username, query) {
			users = append(users, user.Summary())
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[userID]
	if !ok {
		return fmt.Errorf("failed to update push token: user %w", repository.ErrNotFound)
	}
	if pushToken == nil {
		user.PushToken = nil
		return nil
	}
	token := *pushToken
	user.PushToken = &token
	return nil
}
