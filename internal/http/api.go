package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"market-board/internal/domain"
	"market-board/internal/service"
	"market-board/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	posts     service.PostService
	messages  service.MessageService
	images    storage.ImageService
	logger    *logrus.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewHandler(
	users service.UserService,
	posts service.PostService,
	messages service.MessageService,
	images storage.ImageService,
	logger *logrus.Logger,
	jwtSecret string,
	tokenTTL time.Duration,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:     users,
		posts:     posts,
		messages:  messages,
		images:    images,
		logger:    logger,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	registerValidations()
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.GET("/logout", h.logout)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authed := api.Group("")
		authed.Use(h.requireAuth())
		{
			authed.GET("/home", h.home)
			authed.POST("/home", h.createHomePost)

			authed.POST("/posts", h.createPost)
			authed.GET("/posts/:id", h.getPost)
			authed.PUT("/posts/:id", h.updatePost)
			authed.DELETE("/posts/:id", h.deletePost)
			authed.POST("/posts/:id/comments", h.addComment)

			authed.GET("/account", h.getAccount)
			authed.PUT("/account", h.updateAccount)
			authed.DELETE("/account", h.deleteAccount)
			authed.GET("/users/:username", h.userProfile)

			authed.GET("/messages", h.inbox)
			authed.GET("/messages/:username", h.conversation)
			authed.POST("/messages/:username", h.sendMessage)

			authed.GET("/images/*key", h.imageURL)

			authed.DELETE("/admin/users/:username", h.adminDeleteAccount)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// respondError maps the domain error taxonomy onto HTTP statuses in one place.
func (h *Handler) respondError(c *gin.Context, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, storage.ErrUnsupportedFormat), errors.Is(err, storage.ErrImageTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": gin.H{"image": err.Error()}})
	default:
		h.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": userToResponse(user)})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := issueToken(h.jwtSecret, user.ID, h.tokenTTL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user":         userToResponse(user),
	})
}

// logout is a no-op on the server; tokens are stateless and the client
// simply discards its copy.
func (h *Handler) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": "logged out"})
}

func (h *Handler) home(c *gin.Context) {
	user := currentUser(c)

	posts, err := h.posts.ListByAuthor(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"greeting": greetingForHour(time.Now().Hour()),
		"title":    titleCase(user.Username) + "'s Market",
		"posts":    postsToResponse(posts),
	})
}

func (h *Handler) createHomePost(c *gin.Context) {
	user := currentUser(c)

	var req homePostRequest
	if !bindForm(c, &req) {
		return
	}

	imageKey, err := h.saveUpload(c, "image", storage.KindPost, false)
	if err != nil {
		h.respondError(c, err)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), user, service.PostInput{
		Title:   req.Title,
		Content: req.Content,
		Image:   imageKey,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) createPost(c *gin.Context) {
	user := currentUser(c)

	var req createPostRequest
	if !bindForm(c, &req) {
		return
	}

	imageKey, err := h.saveUpload(c, "image", storage.KindPost, true)
	if err != nil {
		h.respondError(c, err)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), user, service.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		Image:     imageKey,
		Price:     req.Price,
		Tags:      req.Tags,
		Sold:      req.Sold,
		Anonymous: req.Anonymous,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) updatePost(c *gin.Context) {
	user := currentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req updatePostRequest
	if !bindForm(c, &req) {
		return
	}

	imageKey, err := h.saveUpload(c, "image", storage.KindPost, false)
	if err != nil {
		h.respondError(c, err)
		return
	}

	post, err := h.posts.Update(c.Request.Context(), user, id, service.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		Image:     imageKey,
		Price:     req.Price,
		Tags:      req.Tags,
		Sold:      req.Sold,
		Anonymous: req.Anonymous,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) deletePost(c *gin.Context) {
	user := currentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.posts.Delete(c.Request.Context(), user, id); err != nil {
		h.respondError(c, err)
		return
	}

	// stored image cleanup is best-effort
	if post.Image != "" && h.images != nil {
		if err := h.images.DeleteImage(c.Request.Context(), post.Image); err != nil {
			h.logger.Warnf("delete post image %s: %v", post.Image, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) addComment(c *gin.Context) {
	user := currentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), user, id, req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commentToResponse(*comment))
}

func (h *Handler) getAccount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": userToResponse(currentUser(c))})
}

func (h *Handler) updateAccount(c *gin.Context) {
	user := currentUser(c)

	var req updateAccountRequest
	if !bindForm(c, &req) {
		return
	}

	avatarKey, err := h.saveUpload(c, "picture", storage.KindAvatar, false)
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.users.UpdateAccount(c.Request.Context(), user, service.UpdateAccountInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
		Location: req.Location,
		Contact:  req.Contact,
		Avatar:   avatarKey,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToResponse(updated)})
}

func (h *Handler) deleteAccount(c *gin.Context) {
	user := currentUser(c)

	if err := h.users.DeleteAccount(c.Request.Context(), user); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": user.Username})
}

func (h *Handler) userProfile(c *gin.Context) {
	username := c.Param("username")

	user, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	posts, err := h.posts.ListByAuthor(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userToResponse(user),
		"posts": postsToResponse(posts),
	})
}

func (h *Handler) conversation(c *gin.Context) {
	user := currentUser(c)

	view, err := h.messages.Conversation(c.Request.Context(), user, c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"peer":         userToResponse(view.Peer),
		"messages":     messagesToResponse(view.Messages),
		"recent_chats": usersToResponse(view.RecentChats),
	})
}

func (h *Handler) sendMessage(c *gin.Context) {
	user := currentUser(c)

	var req messageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), user, c.Param("username"), req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, messageToResponse(*msg))
}

func (h *Handler) inbox(c *gin.Context) {
	user := currentUser(c)

	view, err := h.messages.Inbox(c.Request.Context(), user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"greeting":     greetingForHour(time.Now().Hour()),
		"recent_chats": usersToResponse(view.RecentChats),
		"sent":         messagesToResponse(view.Sent),
		"received":     messagesToResponse(view.Received),
	})
}

func (h *Handler) imageURL(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	url, err := h.images.ImageURL(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, url)
}

func (h *Handler) adminDeleteAccount(c *gin.Context) {
	user := currentUser(c)
	username := c.Param("username")

	if err := h.users.AdminDeleteAccount(c.Request.Context(), user, username); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": strings.ToLower(username)})
}

// saveUpload processes the named multipart file through the image service.
// Returns an empty key when the field is absent and not required.
func (h *Handler) saveUpload(c *gin.Context, field string, kind storage.ImageKind, required bool) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if required {
			return "", domain.NewValidationError(field, "This field is required")
		}
		return "", nil
	}
	if h.images == nil {
		return "", errors.New("storage service not configured")
	}
	return h.storeFile(c, file, kind)
}

func (h *Handler) storeFile(c *gin.Context, file *multipart.FileHeader, kind storage.ImageKind) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.images.SaveImage(c.Request.Context(), f, kind)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return 0, false
	}
	return id, true
}

func greetingForHour(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Good morning"
	case hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
