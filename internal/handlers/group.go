package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/db"
	apperr "inkwell/internal/errors"
	"inkwell/internal/feed"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct{}

func NewGroupHandler() *GroupHandler {
	return &GroupHandler{}
}

// Feed renders the posts filed under one group, newest first.
func (h *GroupHandler) Feed(c *gin.Context) {
	slug := c.Param("slug")

	var group models.Group
	if err := db.DB.Where("slug = ?", slug).First(&group).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Group not found")
		return
	}

	page := utils.StringToInt(c.Query("page"))
	pg, err := feed.Fetch(db.DB, feed.InGroup(slug), page, feed.TimelinePageSize)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			RenderError(c, http.StatusNotFound, "Group not found")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Failed to load the group feed")
		return
	}
	feed.FillCommentCounts(db.DB, pg.Items)

	var groups []models.Group
	db.DB.Order("id ASC").Find(&groups)

	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Page":       pg,
		"Group":      group,
		"Groups":     groups,
		"Active":     "group",
		"Title":      group.Title,
		"PagePrefix": "/group/" + group.Slug + "?page=",
	})
}

// List shows all groups.
func (h *GroupHandler) List(c *gin.Context) {
	var groups []models.Group
	db.DB.Order("id ASC").Find(&groups)

	Render(c, http.StatusOK, "group/list.html", gin.H{
		"Groups": groups,
		"Title":  "Groups",
		"Active": "groups",
	})
}
