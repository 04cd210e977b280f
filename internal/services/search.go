package services

import (
	"context"
	"fmt"

	"social-backend/internal/models"
)

const (
	searchUserLimit = 10
	searchPostLimit = 20
)

// SearchResult holds matching users and posts
type SearchResult struct {
	Users []models.UserSummary `json:"users"`
	Posts []*models.Post       `json:"posts"`
}

// SearchService matches a free-text query against usernames and post text
type SearchService struct {
	userRepo UserStore
	postRepo PostStore
}

// NewSearchService creates a new search service
func NewSearchService(userRepo UserStore, postRepo PostStore) *SearchService {
	return &SearchService{userRepo: userRepo, postRepo: postRepo}
}

// Search returns up to 10 users and 20 posts containing query, ignoring
// case. Only an empty query short-circuits; whitespace is matched literally.
func (s *SearchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	result := &SearchResult{
		Users: []models.UserSummary{},
		Posts: []*models.Post{},
	}

	if query == "" {
		return result, nil
	}

	users, err := s.userRepo.SearchByUsername(ctx, query, searchUserLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	posts, err := s.postRepo.SearchByText(ctx, query, searchPostLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	if users != nil {
		result.Users = users
	}
	if posts != nil {
		result.Posts = posts
	}
	return result, nil
}
