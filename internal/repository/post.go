package repository

import (
	"context"

	"market-board/internal/domain"
)

// PostRepository exposes persistence operations for Post aggregates.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Post, error)
	// ListByAuthor returns the author's posts newest first.
	ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error)
}

// CommentRepository manages the append-only comments under a post.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	// ListByPost returns comments oldest first.
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
}
