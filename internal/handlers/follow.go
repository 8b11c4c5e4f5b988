package handlers

import (
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/feed"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct{}

func NewFollowHandler() *FollowHandler {
	return &FollowHandler{}
}

// Feed renders the viewer's personalized timeline: posts by the authors
// they follow, newest first.
func (h *FollowHandler) Feed(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	page := utils.StringToInt(c.Query("page"))
	pg, err := feed.Fetch(db.DB, feed.FollowedBy(user.ID), page, feed.TimelinePageSize)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load the feed")
		return
	}
	feed.FillCommentCounts(db.DB, pg.Items)

	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Page":       pg,
		"Active":     "follow",
		"Title":      "Your feed",
		"PagePrefix": "/follow?page=",
	})
}

// Follow creates the edge viewer -> author. Repeating it, or following
// yourself, changes nothing.
func (h *FollowHandler) Follow(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	author, ok := lookupAuthor(c)
	if !ok {
		return
	}

	if err := services.Follow(user.ID, author.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to follow")
		return
	}

	c.Redirect(http.StatusFound, "/"+author.Username)
}

// Unfollow removes the edge if it exists.
func (h *FollowHandler) Unfollow(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	author, ok := lookupAuthor(c)
	if !ok {
		return
	}

	if err := services.Unfollow(user.ID, author.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to unfollow")
		return
	}

	c.Redirect(http.StatusFound, "/"+author.Username)
}

func lookupAuthor(c *gin.Context) (*models.User, bool) {
	var author models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&author).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found")
		return nil, false
	}
	return &author, true
}
