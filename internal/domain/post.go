package domain

import "time"

// Post is a content item owned by exactly one author. Market listings carry
// price/tags/sold; journal entries may be posted anonymously. Image holds the
// storage key returned by the image service, empty when no image was uploaded.
type Post struct {
	ID        int64
	AuthorID  int64
	Title     string
	Content   string
	Image     string
	Price     string
	Tags      string
	Sold      bool
	Anonymous bool
	CreatedAt time.Time
	UpdatedAt time.Time

	Comments []Comment
}

// Comment is appended under a post. There is no edit or delete path.
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Body      string
	CreatedAt time.Time
}
