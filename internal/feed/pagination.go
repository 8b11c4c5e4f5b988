package feed

import (
	"math"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Page is one slice of an ordered feed plus the navigation metadata the
// templates need.
type Page struct {
	Items      []models.Post
	Number     int
	PerPage    int
	Total      int64
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// Paginate runs the resolved query and returns one page of it. Page numbers
// are 1-indexed; a number below 1 or past the end clamps to the nearest
// valid page rather than failing.
func Paginate(q *gorm.DB, page, perPage int) (*Page, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var posts []models.Post
	offset := (page - 1) * perPage
	if err := q.Limit(perPage).Offset(offset).Find(&posts).Error; err != nil {
		return nil, err
	}

	return &Page{
		Items:      posts,
		Number:     page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}, nil
}
