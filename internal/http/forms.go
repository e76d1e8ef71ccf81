package http

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// usernamePattern mirrors the registration form rule: word characters, dots
// and dashes only, no spaces.
var usernamePattern = regexp.MustCompile(`^[\w.\-]+$`)

var registerValidationsOnce sync.Once

// registerValidations installs the custom "username" rule on gin's validator
// engine.
func registerValidations() {
	registerValidationsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
				return usernamePattern.MatchString(fl.Field().String())
			})
		}
	})
}

type registerRequest struct {
	Name            string `json:"name" binding:"required"`
	Username        string `json:"username" binding:"required,min=2,max=20,username"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateAccountRequest struct {
	Name     string `form:"name" json:"name"`
	Username string `form:"username" json:"username" binding:"required,min=2,max=20,username"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Bio      string `form:"bio" json:"bio"`
	Location string `form:"location" json:"location" binding:"required"`
	Contact  string `form:"contact" json:"contact"`
}

// home posts: image optional, no market fields
type homePostRequest struct {
	Title   string `form:"title"`
	Content string `form:"content" binding:"required"`
}

// full listing form: image handled separately via multipart file
type createPostRequest struct {
	Title     string `form:"title"`
	Content   string `form:"content" binding:"required"`
	Price     string `form:"price" binding:"required"`
	Tags      string `form:"tags"`
	Sold      bool   `form:"sold"`
	Anonymous bool   `form:"anonymous"`
}

type updatePostRequest struct {
	Title     string `form:"title"`
	Content   string `form:"content" binding:"required"`
	Price     string `form:"price"`
	Tags      string `form:"tags"`
	Sold      bool   `form:"sold"`
	Anonymous bool   `form:"anonymous"`
}

type commentRequest struct {
	Body string `json:"body" binding:"required,max=140"`
}

type messageRequest struct {
	Message string `json:"message" binding:"required"`
}

// fieldErrors converts validator failures into the structured
// field -> message map surfaced to clients.
func fieldErrors(err error) map[string]string {
	fields := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["form"] = "invalid request body"
		return fields
	}
	for _, fe := range verrs {
		fields[jsonFieldName(fe)] = messageForTag(fe)
	}
	return fields
}

func jsonFieldName(fe validator.FieldError) string {
	// StructNamespace is Type.Field; the request structs keep json/form tags
	// aligned with the lower-cased field name.
	return toSnake(fe.Field())
}

func toSnake(field string) string {
	out := make([]rune, 0, len(field)+4)
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "min":
		return "Too short (minimum " + fe.Param() + " characters)"
	case "max":
		return "Too long (maximum " + fe.Param() + " characters)"
	case "eqfield":
		return "Field must be equal to password"
	case "username":
		return `No Spaces. Use "-" or "_" or "." instead`
	default:
		return "Invalid value"
	}
}

// bindJSON binds and validates, writing a structured 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(400, gin.H{"error": "validation failed", "fields": fieldErrors(err)})
		return false
	}
	return true
}

// bindForm binds multipart/urlencoded forms the same way.
func bindForm(c *gin.Context, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		c.JSON(400, gin.H{"error": "validation failed", "fields": fieldErrors(err)})
		return false
	}
	return true
}
