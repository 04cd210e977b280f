package repository

import (
	"context"
	"fmt"
	"strings"

	"social-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password_hash, profile_picture_url, bio,
	saved_posts, following, followers, push_token, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.ProfilePictureURL, &user.Bio,
		&user.SavedPosts, &user.Following, &user.Followers, &user.PushToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.SavedPosts = orEmpty(user.SavedPosts)
	user.Following = orEmpty(user.Following)
	user.Followers = orEmpty(user.Followers)
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, profile_picture_url, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.ProfilePictureURL, user.Bio,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create user: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", notFound(err, "user"))
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", notFound(err, "user"))
	}
	return user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// UsernameExists checks if a username is already taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile sets the username and bio of a user and returns the updated row
func (r *UserRepository) UpdateProfile(ctx context.Context, id, username, bio string) (*models.User, error) {
	query := `
		UPDATE users SET username = $2, bio = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, id, username, bio))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to update profile: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update profile: %w", notFound(err, "user"))
	}
	return user, nil
}

// Follow adds targetID to the follower's following list and followerID to
// the target's followers list in one transaction. Already present ids are
// left alone.
func (r *UserRepository) Follow(ctx context.Context, followerID, targetID string) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE users SET following = array_append(following, $2), updated_at = now()
			WHERE id = $1 AND NOT ($2 = ANY(following))
		`, followerID, targetID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE users SET followers = array_append(followers, $2), updated_at = now()
			WHERE id = $1 AND NOT ($2 = ANY(followers))
		`, targetID, followerID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

// Unfollow removes both sides of a follow relationship in one transaction
func (r *UserRepository) Unfollow(ctx context.Context, followerID, targetID string) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE users SET following = array_remove(following, $2), updated_at = now()
			WHERE id = $1
		`, followerID, targetID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE users SET followers = array_remove(followers, $2), updated_at = now()
			WHERE id = $1
		`, targetID, followerID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	return nil
}

// ToggleSavedPost adds postID to the user's saved posts, or removes it if
// already saved, and returns the resulting list
func (r *UserRepository) ToggleSavedPost(ctx context.Context, userID, postID string) ([]string, error) {
	query := `
		UPDATE users SET
			saved_posts = CASE
				WHEN $2 = ANY(saved_posts) THEN array_remove(saved_posts, $2)
				ELSE array_append(saved_posts, $2)
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING saved_posts
	`
	var saved []string
	if err := r.db.QueryRow(ctx, query, userID, postID).Scan(&saved); err != nil {
		return nil, fmt.Errorf("failed to toggle saved post: %w", notFound(err, "user"))
	}
	return orEmpty(saved), nil
}

// SearchByUsername returns up to limit users whose username contains query,
// ignoring case
func (r *UserRepository) SearchByUsername(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, profile_picture_url
		FROM users
		WHERE username ILIKE $1
		ORDER BY username
		LIMIT $2
	`, containsPattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.ProfilePictureURL); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to update push token: user %w", ErrNotFound)
	}
	return nil
}

// containsPattern builds an ILIKE pattern matching query literally anywhere
func containsPattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}
