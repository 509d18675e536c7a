package handlers

import (
	"strconv"

	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// idParam parses a positive integer path parameter, answering 400 otherwise.
func idParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid "+name+".", gin.H{"param": name})
		return 0, false
	}
	return id, true
}

// currentUserID reads the identity stored by the auth gate. Routes reaching
// a handler without one are misconfigured, so the answer is 401.
func currentUserID(ctx *gin.Context) (int64, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required.")
		return 0, false
	}
	return id, true
}
