package middleware

import "context"

// userIDKey is the key under which the authenticated user's ID is stored in
// the request context.
const userIDKey = contextKey("userID")

// GetUserIDFromCtx retrieves the authenticated user ID from a context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
