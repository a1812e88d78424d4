package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"taskmanager/internal/middleware"
	"taskmanager/internal/service"
)

// APIResponse is the envelope of every /api response.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

const msgUnexpected = "An unexpected error occurred"

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, APIResponse{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{Success: false, Message: message, Data: nil})
}

// writeServiceError maps a service error kind to its HTTP status.
func writeServiceError(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		respondError(c, http.StatusBadRequest, err.Error())
	case service.KindNotFound:
		respondError(c, http.StatusNotFound, err.Error())
	case service.KindUnauthorized:
		respondError(c, http.StatusForbidden, err.Error())
	case service.KindAuthentication:
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, msgUnexpected)
	}
}

// writeBindingError answers 400 with the first validation failure in readable form.
func writeBindingError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, bindingMessage(err))
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request: " + err.Error()
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// currentUserID returns the caller set by JWTAuthMiddleware, answering 401 when absent.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Not authenticated")
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		respondError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid task ID format")
		return uuid.Nil, false
	}
	return id, true
}
