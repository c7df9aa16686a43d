package model

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/pageza/recipeshare/backend/internal/apperror"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

// SortOrder selects the ordering of a recipe listing.
type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortPopular SortOrder = "popular"
	SortViews   SortOrder = "views"
)

// ParseSortOrder maps a query value to a SortOrder. Empty means newest.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "", SortNewest:
		return SortNewest, nil
	case SortPopular, SortViews:
		return SortOrder(s), nil
	}
	return "", apperror.InvalidArgument("unknown sort order %q", s)
}

// ListQuery filters and pages a recipe listing. Filters combine with AND.
type ListQuery struct {
	Category     string
	OwnerID      string
	Tag          string
	FeaturedOnly bool
	Sort         SortOrder
	PageSize     int
	Cursor       string
}

// Normalized returns q with defaults applied and the page size clamped.
func (q ListQuery) Normalized() ListQuery {
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Category != "" {
		q.Category = CanonicalCategory(q.Category)
	}
	if q.Tag != "" {
		if tags := NormalizeTags([]string{q.Tag}); len(tags) == 1 {
			q.Tag = tags[0]
		}
	}
	return q
}

// Page is one page of a listing. NextCursor is empty on the last page.
type Page struct {
	Items      []*Recipe `json:"recipes"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// Cursor marks the position after the last item of a page: the item's sort key
// and its ID as the tie breaker.
type Cursor struct {
	Sort      SortOrder `json:"s"`
	Count     int64     `json:"n,omitempty"`
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

// CursorAfter returns the cursor positioned after r in the given ordering.
func CursorAfter(r *Recipe, sort SortOrder) Cursor {
	c := Cursor{Sort: sort, ID: r.ID}
	switch sort {
	case SortPopular:
		c.Count = int64(r.LikesCount)
	case SortViews:
		c.Count = r.ViewCount
	default:
		c.CreatedAt = r.CreatedAt.UTC()
	}
	return c
}

// Encode returns the opaque token form of c.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses a token produced by Cursor.Encode for the given ordering.
func DecodeCursor(token string, sort SortOrder) (Cursor, error) {
	var c Cursor
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, apperror.InvalidArgument("malformed cursor")
	}
	if err := json.Unmarshal(b, &c); err != nil || c.ID == "" {
		return c, apperror.InvalidArgument("malformed cursor")
	}
	if c.Sort != sort {
		return c, apperror.InvalidArgument("cursor was issued for sort order %q", c.Sort)
	}
	return c, nil
}
