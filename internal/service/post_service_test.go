package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"market-board/internal/domain"
)

type fakePostRepo struct {
	posts  map[int64]*domain.Post
	nextID int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[int64]*domain.Post{}}
}

func (f *fakePostRepo) Init(context.Context) error { return nil }

func (f *fakePostRepo) Create(_ context.Context, post *domain.Post) (int64, error) {
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now().UTC()
	clone := *post
	f.posts[post.ID] = &clone
	return post.ID, nil
}

func (f *fakePostRepo) Update(_ context.Context, post *domain.Post) error {
	if _, ok := f.posts[post.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *post
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) Get(_ context.Context, id int64) (*domain.Post, error) {
	if p, ok := f.posts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePostRepo) ListByAuthor(_ context.Context, authorID int64) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
	nextID   int64
}

func (f *fakeCommentRepo) Init(context.Context) error { return nil }

func (f *fakeCommentRepo) Create(_ context.Context, c *domain.Comment) (int64, error) {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now().UTC()
	f.comments = append(f.comments, *c)
	return c.ID, nil
}

func (f *fakeCommentRepo) ListByPost(_ context.Context, postID int64) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestCreatePostImageOptional(t *testing.T) {
	repo := newFakePostRepo()
	svc := NewPostService(repo, &fakeCommentRepo{})
	author := testUser(1, "alice")
	ctx := context.Background()

	plain, err := svc.Create(ctx, author, PostInput{Content: "dear diary"})
	require.NoError(t, err)
	require.Empty(t, plain.Image)

	withImage, err := svc.Create(ctx, author, PostInput{Content: "for sale", Image: "post/abc.jpg", Price: "10"})
	require.NoError(t, err)
	require.Equal(t, "post/abc.jpg", withImage.Image)

	_, err = svc.Create(ctx, author, PostInput{Content: "   "})
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Fields, "content")
}

func TestUpdatePostAuthorGate(t *testing.T) {
	repo := newFakePostRepo()
	svc := NewPostService(repo, &fakeCommentRepo{})
	author := testUser(1, "alice")
	stranger := testUser(2, "mallory")
	ctx := context.Background()

	post, err := svc.Create(ctx, author, PostInput{Content: "original", Image: "post/a.jpg", Sold: false})
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger, post.ID, PostInput{Content: "hijacked"})
	require.ErrorIs(t, err, domain.ErrForbidden)

	// unchanged after the forbidden attempt
	got, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "original", got.Content)

	updated, err := svc.Update(ctx, author, post.ID, PostInput{Content: "edited", Sold: true})
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Content)
	require.True(t, updated.Sold)
	// no new image uploaded keeps the old one
	require.Equal(t, "post/a.jpg", updated.Image)
}

func TestDeletePostAuthorGate(t *testing.T) {
	repo := newFakePostRepo()
	svc := NewPostService(repo, &fakeCommentRepo{})
	author := testUser(1, "alice")
	stranger := testUser(2, "mallory")
	ctx := context.Background()

	post, err := svc.Create(ctx, author, PostInput{Content: "keep me"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, stranger, post.ID), domain.ErrForbidden)
	_, err = svc.Get(ctx, post.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, author, post.ID))
	_, err = svc.Get(ctx, post.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, author, 999), domain.ErrNotFound)
}

func TestAddComment(t *testing.T) {
	repo := newFakePostRepo()
	comments := &fakeCommentRepo{}
	svc := NewPostService(repo, comments)
	author := testUser(1, "alice")
	reader := testUser(2, "bob")
	ctx := context.Background()

	post, err := svc.Create(ctx, author, PostInput{Content: "thoughts?"})
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, reader, post.ID, "nice post")
	require.NoError(t, err)
	require.Equal(t, post.ID, comment.PostID)

	_, err = svc.AddComment(ctx, reader, post.ID, strings.Repeat("x", 141))
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Fields, "body")

	_, err = svc.AddComment(ctx, reader, 999, "into the void")
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
}
