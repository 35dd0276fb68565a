package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wanjohi/questioner/middleware"
	"github.com/wanjohi/questioner/models"
)

// getUserID reads the authenticated user id set by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// currentUser loads the full record of the authenticated user.
func currentUser(db *gorm.DB, ctx *gin.Context) (*models.User, bool) {
	id, ok := getUserID(ctx)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// pathUint parses a numeric path parameter. Zero and malformed values fail.
func pathUint(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// isStaff reports whether the user may manage meetups.
func isStaff(u *models.User) bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}
