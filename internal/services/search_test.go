package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_EmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice")

	result, err := env.search.Search(context.Background(), "")
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users": [], "posts": []}`, string(data))
}

func TestSearch_WhitespaceIsMatched(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "john doe")
	env.signup(t, "alice")

	result, err := env.search.Search(context.Background(), " ")
	require.NoError(t, err)
	require.Len(t, result.Users, 1)
	assert.Equal(t, "john doe", result.Users[0].Username)
}

func TestSearch_MatchesIgnoringCase(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "Alice")
	env.signup(t, "malice")
	env.signup(t, "bob")

	env.post(t, alice.ID, "Hello WORLD")
	env.post(t, alice.ID, "nothing here")

	result, err := env.search.Search(context.Background(), "ALIC")
	require.NoError(t, err)
	require.Len(t, result.Users, 2)
	assert.Empty(t, result.Posts)

	result, err = env.search.Search(context.Background(), "world")
	require.NoError(t, err)
	assert.Empty(t, result.Users)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "Hello WORLD", result.Posts[0].Text)
	assert.Equal(t, "Alice", result.Posts[0].User.Username)
}

func TestSearch_Limits(t *testing.T) {
	env := newTestEnv(t)
	var authorID string
	for i := 0; i < 12; i++ {
		user := env.signup(t, fmt.Sprintf("user%02d", i))
		authorID = user.ID
	}
	for i := 0; i < 22; i++ {
		env.post(t, authorID, fmt.Sprintf("user post %d", i))
	}

	result, err := env.search.Search(context.Background(), "user")
	require.NoError(t, err)
	assert.Len(t, result.Users, searchUserLimit)
	assert.Len(t, result.Posts, searchPostLimit)
	assert.Equal(t, "user post 21", result.Posts[0].Text, "newest post first")
}
