package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"inkwell/internal/db"
	apperr "inkwell/internal/errors"
	"inkwell/internal/feed"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

// How long a rendered feed page may be served unchanged.
const feedCacheTTL = 30 * time.Second

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// Index renders the global timeline, newest first.
func (h *PostHandler) Index(c *gin.Context) {
	cacheKey := "feed:" + c.Request.URL.RequestURI()
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			// Copy before rendering: Render adds per-request keys and the
			// cached map is shared between viewers.
			Render(c, http.StatusOK, "post/list.html", cloneH(hData))
			return
		}
	}

	page := utils.StringToInt(c.Query("page"))
	pg, err := feed.Fetch(db.DB, feed.Global(), page, feed.TimelinePageSize)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load the feed")
		return
	}
	feed.FillCommentCounts(db.DB, pg.Items)

	var groups []models.Group
	db.DB.Order("id ASC").Find(&groups)

	renderData := gin.H{
		"Page":       pg,
		"Groups":     groups,
		"Active":     "home",
		"Title":      "Latest posts",
		"PagePrefix": "/?page=",
	}

	utils.GetCache().Set(cacheKey, renderData, feedCacheTTL)

	Render(c, http.StatusOK, "post/list.html", cloneH(renderData))
}

// Search renders the keyword feed. An empty keyword yields no results, not
// the whole site.
func (h *PostHandler) Search(c *gin.Context) {
	keyword := c.Query("q")
	page := utils.StringToInt(c.Query("page"))

	pg, err := feed.Fetch(db.DB, feed.Matching(keyword), page, feed.TimelinePageSize)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Search failed")
		return
	}
	feed.FillCommentCounts(db.DB, pg.Items)

	Render(c, http.StatusOK, "search.html", gin.H{
		"Page":       pg,
		"Query":      keyword,
		"Active":     "search",
		"Title":      "Search",
		"PagePrefix": "/search?q=" + template.URLQueryEscaper(keyword) + "&page=",
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	var groups []models.Group
	db.DB.Order("id ASC").Find(&groups)

	Render(c, http.StatusOK, "post/create.html", gin.H{
		"Title":  "New post",
		"Groups": groups,
	})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	text := c.PostForm("text")
	groupID, groupErr := parseGroupID(c.PostForm("group_id"))
	if groupErr != "" {
		h.renderCreateError(c, http.StatusBadRequest, groupErr)
		return
	}

	imagePath := ""
	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		path, saveErr := services.SaveImage(file, header)
		if saveErr != nil {
			if apperr.IsValidation(saveErr) {
				h.renderCreateError(c, http.StatusBadRequest, saveErr.Error())
			} else {
				h.renderCreateError(c, http.StatusInternalServerError, "Failed to store the image")
			}
			return
		}
		imagePath = path
	}

	post, err := services.CreatePost(user.ID, services.PostInput{
		Text:    text,
		GroupID: groupID,
		Image:   imagePath,
	})
	if err != nil {
		if apperr.IsValidation(err) {
			h.renderCreateError(c, http.StatusBadRequest, err.Error())
		} else {
			h.renderCreateError(c, http.StatusInternalServerError, "Failed to publish the post")
		}
		return
	}

	c.Redirect(http.StatusFound, postPath(post.ID, user.Username))
}

func (h *PostHandler) renderCreateError(c *gin.Context, code int, message string) {
	var groups []models.Group
	db.DB.Order("id ASC").Find(&groups)
	Render(c, code, "post/create.html", gin.H{
		"Title":  "New post",
		"Error":  message,
		"Groups": groups,
		"Text":   c.PostForm("text"),
	})
}

// Detail renders a single post with its comments and the comment form.
func (h *PostHandler) Detail(c *gin.Context) {
	post, ok := lookupPost(c)
	if !ok {
		return
	}
	renderDetail(c, post, http.StatusOK, "")
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	post, ok := lookupPost(c)
	if !ok {
		return
	}

	// Someone else's post: back to the read-only view, not an error page.
	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, postPath(post.ID, post.Author.Username))
		return
	}

	var groups []models.Group
	db.DB.Order("id ASC").Find(&groups)

	Render(c, http.StatusOK, "post/edit.html", gin.H{
		"Title":  "Edit post",
		"Post":   post,
		"Groups": groups,
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	post, ok := lookupPost(c)
	if !ok {
		return
	}

	text := c.PostForm("text")
	groupID, groupErr := parseGroupID(c.PostForm("group_id"))
	if groupErr != "" {
		h.renderEditError(c, post, http.StatusBadRequest, groupErr)
		return
	}

	imagePath := ""
	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		path, saveErr := services.SaveImage(file, header)
		if saveErr != nil {
			h.renderEditError(c, post, http.StatusBadRequest, saveErr.Error())
			return
		}
		imagePath = path
	}

	err := services.UpdatePost(post, user.ID, services.PostInput{
		Text:    text,
		GroupID: groupID,
		Image:   imagePath,
	})
	switch {
	case errors.Is(err, apperr.ErrForbidden):
		c.Redirect(http.StatusFound, postPath(post.ID, post.Author.Username))
	case apperr.IsValidation(err):
		h.renderEditError(c, post, http.StatusBadRequest, err.Error())
	case err != nil:
		h.renderEditError(c, post, http.StatusInternalServerError, "Failed to save the post")
	default:
		c.Redirect(http.StatusFound, postPath(post.ID, post.Author.Username))
	}
}

func (h *PostHandler) renderEditError(c *gin.Context, post *models.Post, code int, message string) {
	var groups []models.Group
	db.DB.Order("id ASC").Find(&groups)
	Render(c, code, "post/edit.html", gin.H{
		"Title":  "Edit post",
		"Error":  message,
		"Post":   post,
		"Groups": groups,
	})
}

func (h *PostHandler) AddComment(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	post, ok := lookupPost(c)
	if !ok {
		return
	}

	text := c.PostForm("text")
	if _, err := services.CreateComment(post.ID, user.ID, text); err != nil {
		if apperr.IsValidation(err) {
			renderDetail(c, post, http.StatusBadRequest, err.Error())
		} else {
			RenderError(c, http.StatusInternalServerError, "Failed to save the comment")
		}
		return
	}

	c.Redirect(http.StatusFound, postPath(post.ID, post.Author.Username))
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	post, ok := lookupPost(c)
	if !ok {
		return
	}

	if err := services.DeletePost(post, user.ID); err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			c.Redirect(http.StatusFound, postPath(post.ID, post.Author.Username))
			return
		}
		RenderError(c, http.StatusInternalServerError, "Failed to delete the post")
		return
	}

	c.Redirect(http.StatusFound, "/"+user.Username)
}

// lookupPost resolves the /:username/:post_id pair. The post must exist and
// belong to that username, otherwise 404.
func lookupPost(c *gin.Context) (*models.Post, bool) {
	username := c.Param("username")
	postID := utils.StringToInt(c.Param("post_id"))

	var post models.Post
	err := db.DB.Preload("Author").Preload("Group").
		Joins("JOIN users ON users.id = posts.author_id").
		Where("posts.id = ? AND users.username = ?", postID, username).
		First(&post).Error
	if err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return nil, false
	}
	return &post, true
}

func renderDetail(c *gin.Context, post *models.Post, code int, commentError string) {
	var comments []models.Comment
	db.DB.Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at ASC").
		Find(&comments)

	type renderedComment struct {
		models.Comment
		TextHTML template.HTML
	}
	rendered := make([]renderedComment, len(comments))
	for i, com := range comments {
		rendered[i] = renderedComment{
			Comment:  com,
			TextHTML: utils.RenderMarkdown(com.Text),
		}
	}

	Render(c, code, "post/detail.html", gin.H{
		"Title":        "Post by " + post.Author.Username,
		"Post":         post,
		"PostText":     utils.RenderMarkdown(post.Text),
		"Comments":     rendered,
		"CommentError": commentError,
	})
}

func postPath(postID uint, username string) string {
	return "/" + username + "/" + utils.IntToString(int(postID))
}

func parseGroupID(raw string) (*uint, string) {
	if raw == "" {
		return nil, ""
	}
	id := utils.StringToInt(raw)
	if id <= 0 {
		return nil, "Unknown group"
	}
	var group models.Group
	if err := db.DB.First(&group, id).Error; err != nil {
		return nil, "Unknown group"
	}
	gid := uint(id)
	return &gid, ""
}
