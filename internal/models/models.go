package models

import "time"

// Notification types
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// MaxBioLength is the longest bio a user may set
const MaxBioLength = 160

// User represents a user in the system
type User struct {
	ID                string    `json:"_id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	ProfilePictureURL string    `json:"profilePictureUrl"`
	Bio               string    `json:"bio"`
	SavedPosts        []string  `json:"savedPosts"`
	Following         []string  `json:"following"`
	Followers         []string  `json:"followers"`
	PushToken         *string   `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// UserSummary is the author/sender shape embedded in posts and notifications
type UserSummary struct {
	ID                string `json:"_id"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// Summary returns the public summary of u
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		Username:          u.Username,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// PublicProfile is what other users see on a profile page
type PublicProfile struct {
	ID                string    `json:"_id"`
	Username          string    `json:"username"`
	CreatedAt         time.Time `json:"createdAt"`
	ProfilePictureURL string    `json:"profilePictureUrl"`
	Bio               string    `json:"bio"`
	FollowersCount    int       `json:"followersCount"`
	FollowingCount    int       `json:"followingCount"`
	PostsCount        int       `json:"postsCount"`
}

// PrivateProfile is the caller's own editable profile
type PrivateProfile struct {
	ID                string `json:"_id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Bio               string `json:"bio"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// Post represents a post with its author and comments populated
type Post struct {
	ID        string      `json:"_id"`
	UserID    string      `json:"-"`
	User      UserSummary `json:"user"`
	Text      string      `json:"text,omitempty"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	Likes     []string    `json:"likes"`
	Comments  []Comment   `json:"comments"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// HasLike reports whether userID is in the post's likes
func (p *Post) HasLike(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is embedded in a post. Username and ProfilePictureURL are
// snapshots taken when the comment was written; User is the live author.
type Comment struct {
	ID                string      `json:"_id"`
	PostID            string      `json:"-"`
	UserID            string      `json:"-"`
	User              UserSummary `json:"user"`
	Username          string      `json:"username"`
	ProfilePictureURL string      `json:"profilePictureUrl"`
	Text              string      `json:"text"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// PostSummary is the post shape embedded in notifications
type PostSummary struct {
	ID       string `json:"_id"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Notification represents a notification addressed to UserTo
type Notification struct {
	ID        string       `json:"_id"`
	UserTo    string       `json:"userTo"`
	UserFrom  UserSummary  `json:"userFrom"`
	PostID    *string      `json:"-"`
	Post      *PostSummary `json:"post"`
	Type      string       `json:"type"`
	Read      bool         `json:"read"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
