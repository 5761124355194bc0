package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"devsquare/internal/apperrors"
	"devsquare/internal/logger"
	"devsquare/internal/middleware"
	"devsquare/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report json field names in validation messages
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	}
}

// respond writes a success envelope around payload.
func respond(c *gin.Context, code int, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(code, payload)
}

// respondError maps err onto the error envelope. Internal failures are logged
// with their cause and reported generically.
func respondError(c *gin.Context, err error) {
	if apperrors.Code(err) == apperrors.CodeInternal {
		ev := logger.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path)
		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Cause() != nil {
			ev = ev.AnErr("cause", ce.Cause())
		}
		ev.Msg("request failed")
	}
	c.AbortWithStatusJSON(apperrors.StatusCode(err), apperrors.NewErrorResponse(err))
}

// bindJSON binds the request body into obj and reports failures as validation errors.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(formatValidationError(fe)).
			WithDetails(map[string]interface{}{"field": fe.Field()})
	}
	return apperrors.NewValidationError("invalid request body")
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// currentUser returns the signed-in user. Routes behind AuthRequired always have one.
func currentUser(c *gin.Context) *models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

// viewerID returns the signed-in user's id, or "" for anonymous requests.
func viewerID(c *gin.Context) string {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.ID
	}
	return ""
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
