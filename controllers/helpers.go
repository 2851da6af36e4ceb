package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dailygrind/dailygrind/middleware"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// userLocation loads the user's IANA zone, falling back to UTC when the stored
// value no longer resolves (e.g. a renamed zone in an old tzdata).
func userLocation(timezone string) *time.Location {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
