package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// SessionState is what a session persists between runs
type SessionState struct {
	Token         string             `json:"token"`
	User          *services.AuthUser `json:"user"`
	FollowingList []string           `json:"followingList"`
	SavedPosts    []string           `json:"savedPosts"`
}

// Session keeps the logged-in user and the id lists derived from it in a
// JSON file. Follow and save toggles change local state first and are not
// rolled back when the API call fails.
type Session struct {
	mu    sync.Mutex
	api   *Client
	path  string
	state SessionState
}

// NewSession restores a session from path, if present
func NewSession(api *Client, path string) (*Session, error) {
	s := &Session{api: api, path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.state); err != nil {
			return nil, fmt.Errorf("failed to parse session file: %w", err)
		}
		api.SetToken(s.state.Token)
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	return s, nil
}

// Signup creates an account and logs the session in
func (s *Session) Signup(ctx context.Context, username, email, password string) error {
	result, err := s.api.Signup(ctx, username, email, password)
	if err != nil {
		return err
	}
	return s.start(result)
}

// Login logs the session in
func (s *Session) Login(ctx context.Context, email, password string) error {
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.start(result)
}

// Logout forgets the token and user and removes the session file
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = SessionState{}
	s.api.SetToken("")
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// State returns a copy of the current state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	out.FollowingList = append([]string(nil), s.state.FollowingList...)
	out.SavedPosts = append([]string(nil), s.state.SavedPosts...)
	return out
}

// LoggedIn reports whether the session holds a token
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token != ""
}

// IsFollowing reports whether the session user follows userID
func (s *Session) IsFollowing(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.state.FollowingList, userID) >= 0
}

// IsSaved reports whether the session user saved postID
func (s *Session) IsSaved(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.state.SavedPosts, postID) >= 0
}

// ToggleFollow flips the local follow state of userID, then tells the API.
// It returns the local state after the flip.
func (s *Session) ToggleFollow(ctx context.Context, userID string) bool {
	s.mu.Lock()
	var following bool
	s.state.FollowingList, following = toggle(s.state.FollowingList, userID)
	s.persistLocked()
	s.mu.Unlock()

	if _, err := s.api.ToggleFollow(ctx, userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to toggle follow")
	}
	return following
}

// ToggleSave flips the local saved state of postID, then tells the API.
// It returns the local state after the flip.
func (s *Session) ToggleSave(ctx context.Context, postID string) bool {
	s.mu.Lock()
	var saved bool
	s.state.SavedPosts, saved = toggle(s.state.SavedPosts, postID)
	s.persistLocked()
	s.mu.Unlock()

	if _, err := s.api.ToggleSave(ctx, postID); err != nil {
		log.Error().Err(err).Str("post_id", postID).Msg("Failed to toggle saved post")
	}
	return saved
}

func (s *Session) start(result *services.AuthResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := result.User
	s.state = SessionState{
		Token:         result.Token,
		User:          &user,
		FollowingList: append([]string{}, user.Following...),
		SavedPosts:    append([]string{}, user.SavedPosts...),
	}
	s.api.SetToken(result.Token)
	return s.save()
}

// persistLocked saves state, logging failures. Caller holds mu.
func (s *Session) persistLocked() {
	if err := s.save(); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("Failed to save session")
	}
}

func (s *Session) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}

// toggle removes id if present, otherwise appends it, and reports whether
// id is now present
func toggle(ids []string, id string) ([]string, bool) {
	if i := indexOf(ids, id); i >= 0 {
		return append(ids[:i:i], ids[i+1:]...), false
	}
	return append(ids, id), true
}
