// Package memory is an in-process implementation of the repositories,
// used by tests and by `serve --memory` for local development.
package memory

import (
	"sort"
	"strings"
	"sync"

	"social-backend/internal/models"
)

// DB holds every collection behind one lock
type DB struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	posts         map[string]*models.Post
	postOrder     []string
	notifications []*models.Notification
}

// New creates an empty database
func New() *DB {
	return &DB{
		users: make(map[string]*models.User),
		posts: make(map[string]*models.Post),
	}
}

// Users returns the user repository view of db
func (db *DB) Users() *UserRepository { return &UserRepository{db: db} }

// Posts returns the post repository view of db
func (db *DB) Posts() *PostRepository { return &PostRepository{db: db} }

// Notifications returns the notification repository view of db
func (db *DB) Notifications() *NotificationRepository { return &NotificationRepository{db: db} }

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func hasID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// populate returns a copy of p with author and comment authors filled in.
// Caller holds at least the read lock.
func (db *DB) populate(p *models.Post) *models.Post {
	out := *p
	out.Likes = copyIDs(p.Likes)
	if author, ok := db.users[p.UserID]; ok {
		out.User = author.Summary()
	}
	out.Comments = make([]models.Comment, len(p.Comments))
	for i, c := range p.Comments {
		if author, ok := db.users[c.UserID]; ok {
			c.User = author.Summary()
		}
		out.Comments[i] = c
	}
	return &out
}

// newestPosts returns the posts matching keep, newest first.
// Caller holds at least the read lock.
func (db *DB) newestPosts(keep func(*models.Post) bool) []*models.Post {
	out := []*models.Post{}
	for i := len(db.postOrder) - 1; i >= 0; i-- {
		p, ok := db.posts[db.postOrder[i]]
		if ok && keep(p) {
			out = append(out, db.populate(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
