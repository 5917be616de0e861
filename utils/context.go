package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rechargetravels/booking/logger"
)

// GetUserIDFromContext extracts the authenticated user's ID from the Gin
// context. The auth middleware stores it as a string under "user_id".
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, ErrUserIDNotFound
	}

	s, ok := raw.(string)
	if !ok {
		logger.ErrorLogger.Errorf("User ID in context is not a string: %T", raw)
		return uuid.Nil, fmt.Errorf("invalid user ID type in context")
	}

	id, err := uuid.Parse(s)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse user ID %q from context: %v", s, err)
		return uuid.Nil, fmt.Errorf("invalid user ID format: %w", err)
	}
	return id, nil
}
