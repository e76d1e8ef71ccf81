package service

import (
	"context"
	"strings"

	"market-board/internal/domain"
	"market-board/internal/repository"
)

// PostInput carries the fields of a create or update form. Image is the
// stored key from the image service; empty means no image was uploaded
// (create) or the current one is kept (update).
type PostInput struct {
	Title     string
	Content   string
	Image     string
	Price     string
	Tags      string
	Sold      bool
	Anonymous bool
}

// PostService coordinates post and comment operations. Every mutating call
// takes the acting user explicitly; author checks live here, not in handlers.
type PostService interface {
	Create(ctx context.Context, author *domain.User, in PostInput) (*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	Update(ctx context.Context, actor *domain.User, id int64, in PostInput) (*domain.Post, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
	ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error)
	AddComment(ctx context.Context, author *domain.User, postID int64, body string) (*domain.Comment, error)
}

type postService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

func NewPostService(posts repository.PostRepository, comments repository.CommentRepository) PostService {
	return &postService{
		posts:    posts,
		comments: comments,
	}
}

func (s *postService) Create(ctx context.Context, author *domain.User, in PostInput) (*domain.Post, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, domain.NewValidationError("content", "This field is required")
	}

	post := &domain.Post{
		AuthorID:  author.ID,
		Title:     in.Title,
		Content:   in.Content,
		Image:     in.Image,
		Price:     in.Price,
		Tags:      in.Tags,
		Sold:      in.Sold,
		Anonymous: in.Anonymous,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}

func (s *postService) Update(ctx context.Context, actor *domain.User, id int64, in PostInput) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, domain.NewValidationError("content", "This field is required")
	}

	post.Title = in.Title
	post.Content = in.Content
	post.Price = in.Price
	post.Tags = in.Tags
	post.Sold = in.Sold
	post.Anonymous = in.Anonymous
	if in.Image != "" {
		post.Image = in.Image
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.ID {
		return domain.ErrForbidden
	}
	return s.posts.Delete(ctx, id)
}

func (s *postService) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

func (s *postService) AddComment(ctx context.Context, author *domain.User, postID int64, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.NewValidationError("body", "This field is required")
	}
	if len(body) > 140 {
		return nil, domain.NewValidationError("body", "Comment must be at most 140 characters")
	}

	// comments hang off an existing post only
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		PostID:   postID,
		AuthorID: author.ID,
		Body:     body,
	}
	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
