package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserProfile(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice", "alice@example.com")
	_, bobID := signupUser(t, app, "bob", "bob@example.com")

	resp, body := doJSON(t, app, http.MethodGet, userPath(bobID, ""), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob", body["username"])

	resp, _ = doJSON(t, app, http.MethodGet, userPath(9999, ""), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMyProfile_IncludesFollowCounts(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, aliceID := signupUser(t, app, "alice", "alice@example.com")
	bobToken, bobID := signupUser(t, app, "bob", "bob@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, userPath(bobID, "toggle-follow"), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, userPath(aliceID, "toggle-follow"), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/users/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["i_follow"])
	assert.Equal(t, float64(1), body["my_followers"])
}

func TestGetMyProfile_ZeroCountsStillPresent(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "loner", "loner@example.com")

	resp, body := doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Zero counts must be emitted, not dropped from the payload.
	assert.Equal(t, float64(0), body["i_follow"])
	assert.Equal(t, float64(0), body["my_followers"])
}

func TestUpdateMyProfile(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice", "alice@example.com")

	// Partial update: absent fields must survive untouched.
	resp, body := doJSON(t, app, http.MethodPut, "/api/users/me", token, map[string]any{
		"bio": "gopher",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gopher", body["bio"])
	assert.Equal(t, "alice", body["username"])

	resp, body = doJSON(t, app, http.MethodPut, "/api/users/me", token, map[string]any{
		"username": "alice_2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice_2", body["username"])
	assert.Equal(t, "gopher", body["bio"])

	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/me", token, map[string]any{
		"username": "x",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadMyPicture(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice", "alice@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("picture", "avatar.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/me/picture", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	picture, _ := body["picture"].(string)
	assert.Contains(t, picture, "/media/users/")
}

func TestGetAllUsers_Filters(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice", "alice@example.com")
	signupUser(t, app, "bob", "bob@example.com")
	signupUser(t, app, "bobby", "bobby@example.com")

	resp, users := doJSONList(t, app, http.MethodGet, "/api/users/?username=BOB", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, users, 2)

	resp, users = doJSONList(t, app, http.MethodGet, "/api/users/", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, users, 3)
}

func TestFollowersAndFollowing(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, aliceID := signupUser(t, app, "alice", "alice@example.com")
	bobToken, bobID := signupUser(t, app, "bob", "bob@example.com")
	carolToken, _ := signupUser(t, app, "carol", "carol@example.com")

	// alice -> bob, carol -> bob
	resp, _ := doJSON(t, app, http.MethodPost, userPath(bobID, "toggle-follow"), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, userPath(bobID, "toggle-follow"), carolToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, followers := doJSONList(t, app, http.MethodGet, userPath(bobID, "followers"), bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, followers, 2)
	assert.Equal(t, "alice", followers[0]["username"])
	assert.Equal(t, "carol", followers[1]["username"])

	// Following is directed: bob follows nobody.
	resp, following := doJSONList(t, app, http.MethodGet, userPath(bobID, "following"), bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, following)

	resp, following = doJSONList(t, app, http.MethodGet, userPath(aliceID, "following"), aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0]["username"])
}

func TestToggleFollow_UnknownTarget(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice", "alice@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, userPath(9999, "toggle-follow"), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetUserPosts_DraftVisibility(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, aliceID := signupUser(t, app, "alice", "alice@example.com")
	bobToken, _ := signupUser(t, app, "bob", "bob@example.com")

	createPost(t, app, aliceToken, "published one", "")
	eta := time.Now().Add(time.Hour)
	resp, _ := doJSON(t, app, http.MethodPost, "/api/posts/", aliceToken, map[string]any{
		"text":           "draft one",
		"scheduled_time": eta.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The owner sees drafts on their own page.
	resp, posts := doJSONList(t, app, http.MethodGet, userPath(aliceID, "posts"), aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, posts, 2)

	// Everyone else sees published posts only.
	resp, posts = doJSONList(t, app, http.MethodGet, userPath(aliceID, "posts"), bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, posts, 1)
	assert.Equal(t, "published one", posts[0]["text"])
}
