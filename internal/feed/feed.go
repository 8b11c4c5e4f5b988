// Package feed resolves feed selectors into ordered post queries and slices
// them into fixed-size pages.
package feed

import (
	"errors"
	"strings"

	apperr "inkwell/internal/errors"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Page sizes per feed kind.
const (
	TimelinePageSize = 10 // global, group and followed feeds
	ProfilePageSize  = 3  // per-author feeds
)

type scope int

const (
	scopeGlobal scope = iota
	scopeGroup
	scopeProfile
	scopeFollowed
	scopeSearch
)

// Selector is an explicit description of one feed: which posts belong to it
// and through which parameter. It is resolved once into a single eager query
// so author and group rows are fetched alongside the posts, not per item.
type Selector struct {
	scope    scope
	slug     string
	username string
	viewerID uint
	keyword  string
}

// Global selects every post.
func Global() Selector {
	return Selector{scope: scopeGlobal}
}

// InGroup selects the posts filed under the group with the given slug.
func InGroup(slug string) Selector {
	return Selector{scope: scopeGroup, slug: slug}
}

// ByAuthor selects the posts published by the given username.
func ByAuthor(username string) Selector {
	return Selector{scope: scopeProfile, username: username}
}

// FollowedBy selects the posts whose author the viewer follows.
func FollowedBy(viewerID uint) Selector {
	return Selector{scope: scopeFollowed, viewerID: viewerID}
}

// Matching selects the posts whose text contains the keyword, matched as a
// case-insensitive substring. An empty keyword selects nothing.
func Matching(keyword string) Selector {
	return Selector{scope: scopeSearch, keyword: keyword}
}

// likeEscaper neutralizes LIKE wildcards so the keyword is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Resolve turns a selector into an ordered query, newest first. Unknown
// slugs and usernames resolve to ErrNotFound.
func Resolve(gdb *gorm.DB, sel Selector) (*gorm.DB, error) {
	q := gdb.Model(&models.Post{}).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC, id DESC")

	switch sel.scope {
	case scopeGroup:
		var group models.Group
		if err := gdb.Where("slug = ?", sel.slug).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.ErrNotFound
			}
			return nil, err
		}
		q = q.Where("group_id = ?", group.ID)
	case scopeProfile:
		var author models.User
		if err := gdb.Where("username = ?", sel.username).First(&author).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.ErrNotFound
			}
			return nil, err
		}
		q = q.Where("author_id = ?", author.ID)
	case scopeFollowed:
		followed := gdb.Model(&models.Follow{}).
			Select("author_id").
			Where("follower_id = ?", sel.viewerID)
		q = q.Where("author_id IN (?)", followed)
	case scopeSearch:
		if sel.keyword == "" {
			q = q.Where("1 = 0")
		} else {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(sel.keyword)) + "%"
			q = q.Where(`lower(text) LIKE ? ESCAPE '\'`, pattern)
		}
	}

	return q, nil
}

// Fetch resolves the selector and returns the requested page.
func Fetch(gdb *gorm.DB, sel Selector, page, perPage int) (*Page, error) {
	q, err := Resolve(gdb, sel)
	if err != nil {
		return nil, err
	}
	return Paginate(q, page, perPage)
}
