package repository

import (
	"context"
	"fmt"

	"social-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postSelect = `
	SELECT p.id, p.user_id, u.username, u.profile_picture_url,
		p.text, p.image_url, p.likes, p.created_at, p.updated_at
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

// PostRepository handles database operations for posts and their comments
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, text, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.UserID, post.Text, post.ImageURL, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post with its author and comments populated
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	posts, err := r.list(ctx, postSelect+`WHERE p.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("failed to get post: post %w", ErrNotFound)
	}
	return posts[0], nil
}

// AuthorOf returns the id of the user who wrote the post
func (r *PostRepository) AuthorOf(ctx context.Context, id string) (string, error) {
	var authorID string
	if err := r.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE id = $1`, id).Scan(&authorID); err != nil {
		return "", fmt.Errorf("failed to get post author: %w", notFound(err, "post"))
	}
	return authorID, nil
}

// ListAll returns every post, newest first
func (r *PostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	posts, err := r.list(ctx, postSelect+`ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// ListByAuthors returns posts written by any of authorIDs, newest first
func (r *PostRepository) ListByAuthors(ctx context.Context, authorIDs []string) ([]*models.Post, error) {
	posts, err := r.list(ctx, postSelect+`WHERE p.user_id = ANY($1) ORDER BY p.created_at DESC`, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by authors: %w", err)
	}
	return posts, nil
}

// ListByIDs returns the posts with the given ids, newest first
func (r *PostRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	posts, err := r.list(ctx, postSelect+`WHERE p.id = ANY($1) ORDER BY p.created_at DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by ids: %w", err)
	}
	return posts, nil
}

// SearchByText returns up to limit posts whose text contains query, ignoring
// case, newest first
func (r *PostRepository) SearchByText(ctx context.Context, query string, limit int) ([]*models.Post, error) {
	posts, err := r.list(ctx,
		postSelect+`WHERE p.text ILIKE $1 ORDER BY p.created_at DESC LIMIT $2`,
		containsPattern(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return posts, nil
}

// CountByAuthor counts the posts written by a user
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = $1`, authorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// ToggleLike adds userID to the post's likes, or removes it if present.
// It reports the post author and whether the user now likes the post.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (string, bool, error) {
	query := `
		UPDATE posts SET
			likes = CASE
				WHEN $2 = ANY(likes) THEN array_remove(likes, $2)
				ELSE array_append(likes, $2)
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING user_id, $2 = ANY(likes)
	`
	var authorID string
	var liked bool
	if err := r.db.QueryRow(ctx, query, postID, userID).Scan(&authorID, &liked); err != nil {
		return "", false, fmt.Errorf("failed to toggle like: %w", notFound(err, "post"))
	}
	return authorID, liked, nil
}

// AddComment appends a comment to a post
func (r *PostRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO post_comments (id, post_id, user_id, username, profile_picture_url, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.PostID, comment.UserID, comment.Username, comment.ProfilePictureURL,
		comment.Text, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// GetComment retrieves a single comment of a post
func (r *PostRepository) GetComment(ctx context.Context, postID, commentID string) (*models.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, u.username, u.profile_picture_url,
			c.username, c.profile_picture_url, c.text, c.created_at
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1 AND c.id = $2
	`
	var c models.Comment
	err := r.db.QueryRow(ctx, query, postID, commentID).Scan(
		&c.ID, &c.PostID, &c.UserID, &c.User.Username, &c.User.ProfilePictureURL,
		&c.Username, &c.ProfilePictureURL, &c.Text, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", notFound(err, "comment"))
	}
	c.User.ID = c.UserID
	return &c, nil
}

// DeleteComment removes a comment from a post
func (r *PostRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM post_comments WHERE post_id = $1 AND id = $2`, postID, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete comment: comment %w", ErrNotFound)
	}
	return nil
}

// Delete deletes a post; its comments go with it
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete post: post %w", ErrNotFound)
	}
	return nil
}

// list runs a postSelect query and attaches comments to the resulting posts
func (r *PostRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	byID := make(map[string]*models.Post)
	ids := []string{}
	for rows.Next() {
		var p models.Post
		err := rows.Scan(
			&p.ID, &p.UserID, &p.User.Username, &p.User.ProfilePictureURL,
			&p.Text, &p.ImageURL, &p.Likes, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.User.ID = p.UserID
		p.Likes = orEmpty(p.Likes)
		p.Comments = []models.Comment{}
		posts = append(posts, &p)
		byID[p.ID] = &p
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	if len(ids) == 0 {
		return posts, nil
	}

	commentRows, err := r.db.Query(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.username, u.profile_picture_url,
			c.username, c.profile_picture_url, c.text, c.created_at
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var c models.Comment
		err := commentRows.Scan(
			&c.ID, &c.PostID, &c.UserID, &c.User.Username, &c.User.ProfilePictureURL,
			&c.Username, &c.ProfilePictureURL, &c.Text, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.User.ID = c.UserID
		if p, ok := byID[c.PostID]; ok {
			p.Comments = append(p.Comments, c)
		}
	}
	if err := commentRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return posts, nil
}
