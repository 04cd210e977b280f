package memory

import (
	"context"
	"fmt"
	"time"

	"social-backend/internal/models"
	"social-backend/internal/repository"
)

// PostRepository stores posts and comments in memory
type PostRepository struct {
	db *DB
}

// Create creates a new post
func (r *PostRepository) Create(_ context.Context, post *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored := *post
	stored.Likes = copyIDs(post.Likes)
	stored.Comments = nil
	r.db.posts[post.ID] = &stored
	r.db.postOrder = append(r.db.postOrder, post.ID)
	return nil
}

// GetByID retrieves a populated post
func (r *PostRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	post, ok := r.db.posts[id]
	if !ok {
		return nil, fmt.Errorf("failed to get post: post %w", repository.ErrNotFound)
	}
	return r.db.populate(post), nil
}

// AuthorOf returns the id of the user who wrote the post
func (r *PostRepository) AuthorOf(_ context.Context, id string) (string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	post, ok := r.db.posts[id]
	if !ok {
		return "", fmt.Errorf("failed to get post author: post %w", repository.ErrNotFound)
	}
	return post.UserID, nil
}

// ListAll returns every post, newest first
func (r *PostRepository) ListAll(_ context.Context) ([]*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.db.newestPosts(func(*models.Post) bool { return true }), nil
}

// ListByAuthors returns posts written by any of authorIDs, newest first
func (r *PostRepository) ListByAuthors(_ context.Context, authorIDs []string) ([]*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.db.newestPosts(func(p *models.Post) bool { return hasID(authorIDs, p.UserID) }), nil
}

// ListByIDs returns the posts with the given ids, newest first
func (r *PostRepository) ListByIDs(_ context.Context, ids []string) ([]*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.db.newestPosts(func(p *models.Post) bool { return hasID(ids, p.ID) }), nil
}

// SearchByText returns up to limit posts whose text contains query
func (r *PostRepository) SearchByText(_ context.Context, query string, limit int) ([]*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	posts := r.db.newestPosts(func(p *models.Post) bool { return containsFold(p.Text, query) })
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// CountByAuthor counts the posts written by a user
func (r *PostRepository) CountByAuthor(_ context.Context, authorID string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	count := 0
	for _, post := range r.db.posts {
		if post.UserID == authorID {
			count++
		}
	}
	return count, nil
}

// ToggleLike adds or removes userID from the post's likes
func (r *PostRepository) ToggleLike(_ context.Context, postID, userID string) (string, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	post, ok := r.db.posts[postID]
	if !ok {
		return "", false, fmt.Errorf("failed to toggle like: post %w", repository.ErrNotFound)
	}

	liked := !hasID(post.Likes, userID)
	if liked {
		post.Likes = append(post.Likes, userID)
	} else {
		post.Likes = removeID(post.Likes, userID)
	}
	post.UpdatedAt = time.Now()
	return post.UserID, liked, nil
}

// AddComment appends a comment to a post
func (r *PostRepository) AddComment(_ context.Context, comment *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	post, ok := r.db.posts[comment.PostID]
	if !ok {
		return fmt.Errorf("failed to add comment: post %w", repository.ErrNotFound)
	}
	post.Comments = append(post.Comments, *comment)
	return nil
}

// GetComment retrieves a single comment of a post
func (r *PostRepository) GetComment(_ context.Context, postID, commentID string) (*models.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if post, ok := r.db.posts[postID]; ok {
		for _, c := range post.Comments {
			if c.ID == commentID {
				if author, ok := r.db.users[c.UserID]; ok {
					c.User = author.Summary()
				}
				return &c, nil
			}
		}
	}
	return nil, fmt.Errorf("failed to get comment: comment %w", repository.ErrNotFound)
}

// DeleteComment removes a comment from a post
func (r *PostRepository) DeleteComment(_ context.Context, postID, commentID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if post, ok := r.db.posts[postID]; ok {
		for i, c := range post.Comments {
			if c.ID == commentID {
				post.Comments = append(post.Comments[:i:i], post.Comments[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("failed to delete comment: comment %w", repository.ErrNotFound)
}

// Delete deletes a post and its comments
func (r *PostRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.posts[id]; !ok {
		return fmt.Errorf("failed to delete post: post %w", repository.ErrNotFound)
	}
	delete(r.db.posts, id)
	r.db.postOrder = removeID(r.db.postOrder, id)
	return nil
}
