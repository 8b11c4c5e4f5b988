package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/router"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "password123"

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))
	db.DB = gdb

	// The feed cache outlives individual tests
	utils.GetCache().Purge()

	return router.New("test-secret", "../../web/templates")
}

func doGet(e *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func doPost(e *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

// signup registers a user through the real endpoint and returns the session
// cookies of the fresh login.
func signup(t *testing.T, e *gin.Engine, username string) []*http.Cookie {
	t.Helper()
	w := doPost(e, "/auth/signup", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {testPassword},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
	return w.Result().Cookies()
}

func createTestGroup(t *testing.T, slug string) *models.Group {
	t.Helper()
	group := models.Group{Title: slug, Slug: slug, Description: "test group"}
	require.NoError(t, db.DB.Create(&group).Error)
	return &group
}

func TestAnonymousComposerRedirectsToLogin(t *testing.T) {
	e := newTestServer(t)

	w := doGet(e, "/new", nil)
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "/new", loc.Query().Get("next"))

	w = doPost(e, "/new", url.Values{"text": {"hello"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLoginHonorsNextTarget(t *testing.T) {
	e := newTestServer(t)
	signup(t, e, "sarah")

	w := doPost(e, "/auth/login", url.Values{
		"username": {"sarah"},
		"password": {testPassword},
		"next":     {"/new"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/new", w.Header().Get("Location"))
}

func TestLoginIgnoresOffsiteNext(t *testing.T) {
	e := newTestServer(t)
	signup(t, e, "sarah")

	for _, next := range []string{"https://evil.example/", "//evil.example", "javascript:alert(1)"} {
		w := doPost(e, "/auth/login", url.Values{
			"username": {"sarah"},
			"password": {testPassword},
			"next":     {next},
		}, nil)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e := newTestServer(t)
	signup(t, e, "sarah")

	w := doPost(e, "/auth/login", url.Values{
		"username": {"sarah"},
		"password": {"not it"},
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupRejectsReservedUsername(t *testing.T) {
	e := newTestServer(t)

	w := doPost(e, "/auth/signup", url.Values{
		"username": {"search"},
		"email":    {"search@example.com"},
		"password": {testPassword},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishedPostAppearsEverywhere(t *testing.T) {
	e := newTestServer(t)
	group := createTestGroup(t, "testgroup")
	sarah := signup(t, e, "sarah")

	w := doPost(e, "/new", url.Values{
		"text":     {"hello"},
		"group_id": {fmt.Sprint(group.ID)},
	}, sarah)
	require.Equal(t, http.StatusFound, w.Code)
	postURL := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(postURL, "/sarah/"))

	for _, path := range []string{"/", "/group/testgroup", "/sarah", postURL, "/search?q=HELLO"} {
		w := doGet(e, path, nil)
		require.Equal(t, http.StatusOK, w.Code, "GET %s", path)
		assert.Contains(t, w.Body.String(), "hello", "GET %s", path)
	}

	// A different group's feed stays empty
	createTestGroup(t, "othergroup")
	w = doGet(e, "/group/othergroup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hello")
}

func TestCachedFeedDoesNotLeakSession(t *testing.T) {
	e := newTestServer(t)
	sarah := signup(t, e, "sarah")

	w := doPost(e, "/new", url.Values{"text": {"hello"}}, sarah)
	require.Equal(t, http.StatusFound, w.Code)

	// Logged-in visit populates the feed cache
	w = doGet(e, "/", sarah)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Log out")

	// An anonymous visitor on the cached page gets the anonymous nav
	w = doGet(e, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "hello")
	assert.Contains(t, body, "Log in")
	assert.NotContains(t, body, "Log out")

	// And a different user gets their own
	leo := signup(t, e, "leo")
	w = doGet(e, "/", leo)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/leo"`)
}

func TestStaleSessionRedirectsToLogin(t *testing.T) {
	e := newTestServer(t)
	sarah := signup(t, e, "sarah")

	// Account removed while the cookie is still out there
	require.NoError(t, db.DB.Where("username = ?", "sarah").Delete(&models.User{}).Error)

	w := doGet(e, "/new", sarah)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login")
}

func TestUnknownResourcesReturn404(t *testing.T) {
	e := newTestServer(t)
	signup(t, e, "sarah")

	for _, path := range []string{"/group/missing", "/nobody", "/nobody/1", "/sarah/999"} {
		w := doGet(e, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "GET %s", path)
	}
}

func TestFollowFlow(t *testing.T) {
	e := newTestServer(t)
	ana := signup(t, e, "ana")
	ben := signup(t, e, "ben")

	w := doPost(e, "/new", url.Values{"text": {"from ana"}}, ana)
	require.Equal(t, http.StatusFound, w.Code)

	// Nothing followed yet
	w = doGet(e, "/follow", ben)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "from ana")

	// Follow twice; the edge is created once
	for i := 0; i < 2; i++ {
		w = doGet(e, "/ana/follow", ben)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/ana", w.Header().Get("Location"))
	}
	var edges int64
	db.DB.Model(&models.Follow{}).Count(&edges)
	assert.EqualValues(t, 1, edges)

	w = doGet(e, "/follow", ben)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "from ana")

	w = doGet(e, "/ana/unfollow", ben)
	require.Equal(t, http.StatusFound, w.Code)

	w = doGet(e, "/follow", ben)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "from ana")
}

func TestFollowUnknownUser(t *testing.T) {
	e := newTestServer(t)
	ben := signup(t, e, "ben")

	w := doGet(e, "/ghost/follow", ben)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentFlow(t *testing.T) {
	e := newTestServer(t)
	sarah := signup(t, e, "sarah")
	leo := signup(t, e, "leo")

	w := doPost(e, "/new", url.Values{"text": {"worth discussing"}}, sarah)
	require.Equal(t, http.StatusFound, w.Code)
	postURL := w.Header().Get("Location")

	w = doPost(e, postURL+"/comment", url.Values{"text": {"great stuff"}}, leo)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postURL, w.Header().Get("Location"))

	w = doGet(e, postURL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "great stuff")

	// Empty comments re-render the post with an error
	w = doPost(e, postURL+"/comment", url.Values{"text": {"   "}}, leo)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditByNonAuthorIsRedirected(t *testing.T) {
	e := newTestServer(t)
	sarah := signup(t, e, "sarah")
	leo := signup(t, e, "leo")

	w := doPost(e, "/new", url.Values{"text": {"original"}}, sarah)
	require.Equal(t, http.StatusFound, w.Code)
	postURL := w.Header().Get("Location")

	w = doGet(e, postURL+"/edit", leo)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postURL, w.Header().Get("Location"))

	w = doPost(e, postURL+"/edit", url.Values{"text": {"defaced"}}, leo)
	require.Equal(t, http.StatusFound, w.Code)

	var post models.Post
	require.NoError(t, db.DB.First(&post).Error)
	assert.Equal(t, "original", post.Text)
}

func TestEditByAuthor(t *testing.T) {
	e := newTestServer(t)
	sarah := signup(t, e, "sarah")

	w := doPost(e, "/new", url.Values{"text": {"first draft"}}, sarah)
	require.Equal(t, http.StatusFound, w.Code)
	postURL := w.Header().Get("Location")

	w = doGet(e, postURL+"/edit", sarah)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "first draft")

	w = doPost(e, postURL+"/edit", url.Values{"text": {"second draft"}}, sarah)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postURL, w.Header().Get("Location"))

	var post models.Post
	require.NoError(t, db.DB.First(&post).Error)
	assert.Equal(t, "second draft", post.Text)
}

func TestDeletePost(t *testing.T) {
	e := newTestServer(t)
	sarah := signup(t, e, "sarah")

	w := doPost(e, "/new", url.Values{"text": {"ephemeral"}}, sarah)
	require.Equal(t, http.StatusFound, w.Code)
	postURL := w.Header().Get("Location")

	w = doPost(e, postURL+"/delete", nil, sarah)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/sarah", w.Header().Get("Location"))

	var count int64
	db.DB.Model(&models.Post{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCreatePostRejectsEmptyText(t *testing.T) {
	e := newTestServer(t)
	sarah := signup(t, e, "sarah")

	w := doPost(e, "/new", url.Values{"text": {"  "}}, sarah)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.DB.Model(&models.Post{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestProfileShowsCounts(t *testing.T) {
	e := newTestServer(t)
	sarah := signup(t, e, "sarah")
	ben := signup(t, e, "ben")

	for _, text := range []string{"post alpha", "post bravo", "post charlie", "post delta"} {
		w := doPost(e, "/new", url.Values{"text": {text}}, sarah)
		require.Equal(t, http.StatusFound, w.Code)
	}
	w := doGet(e, "/sarah/follow", ben)
	require.Equal(t, http.StatusFound, w.Code)

	w = doGet(e, "/sarah", ben)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	// Profile pages show three posts per page, newest first
	assert.Contains(t, body, "post delta")
	assert.Contains(t, body, "post bravo")
	assert.NotContains(t, body, "post alpha")

	w = doGet(e, "/sarah?page=2", ben)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "post alpha")
}

func TestLogout(t *testing.T) {
	e := newTestServer(t)
	sarah := signup(t, e, "sarah")

	w := doGet(e, "/auth/logout", sarah)
	require.Equal(t, http.StatusFound, w.Code)

	cleared := w.Result().Cookies()
	w = doGet(e, "/new", cleared)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login")
}
