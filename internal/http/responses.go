package http

import (
	"time"
	"unicode"

	"market-board/internal/domain"
)

type UserResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Bio       string  `json:"bio"`
	Location  string  `json:"location"`
	Contact   string  `json:"contact"`
	Avatar    string  `json:"avatar"`
	Role      string  `json:"role"`
	LastSeen  string  `json:"last_seen"`
	LastRead  *string `json:"last_message_read_time,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type PostResponse struct {
	ID        int64             `json:"id"`
	AuthorID  int64             `json:"author_id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Image     string            `json:"image"`
	Price     string            `json:"price,omitempty"`
	Tags      string            `json:"tags,omitempty"`
	Sold      bool              `json:"sold"`
	Anonymous bool              `json:"anonymous"`
	CreatedAt string            `json:"created_at"`
	Comments  []CommentResponse `json:"comments,omitempty"`
}

type CommentResponse struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"post_id"`
	AuthorID  int64  `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

type MessageResponse struct {
	ID          int64  `json:"id"`
	SenderID    int64  `json:"sender_id"`
	RecipientID int64  `json:"recipient_id"`
	Body        string `json:"body"`
	CreatedAt   string `json:"created_at"`
}

func userToResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		Bio:       user.Bio,
		Location:  user.Location,
		Contact:   user.Contact,
		Avatar:    user.Avatar,
		Role:      string(user.Role),
		LastSeen:  user.LastSeen.Format(time.RFC3339),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastMessageReadTime != nil {
		v := user.LastMessageReadTime.Format(time.RFC3339)
		resp.LastRead = &v
	}
	return resp
}

func usersToResponse(users []domain.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	return resp
}

func postToResponse(post domain.Post) PostResponse {
	resp := PostResponse{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Title:     post.Title,
		Content:   post.Content,
		Image:     post.Image,
		Price:     post.Price,
		Tags:      post.Tags,
		Sold:      post.Sold,
		Anonymous: post.Anonymous,
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
	}
	if len(post.Comments) > 0 {
		resp.Comments = make([]CommentResponse, len(post.Comments))
		for i, c := range post.Comments {
			resp.Comments[i] = commentToResponse(c)
		}
	}
	return resp
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	return resp
}

func commentToResponse(c domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func messageToResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

func messagesToResponse(msgs []domain.Message) []MessageResponse {
	resp := make([]MessageResponse, len(msgs))
	for i := range msgs {
		resp[i] = messageToResponse(msgs[i])
	}
	return resp
}

func titleCase(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
