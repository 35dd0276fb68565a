package utils

import "github.com/gin-gonic/gin"

// Message writes a {"message": ...} payload with the given status code.
func Message(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

// Error writes a {"error": ...} payload with the given status code.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

// ErrorCap writes the error under a capitalised "Error" key. A couple of
// endpoints report failures this way and clients depend on the exact casing.
func ErrorCap(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"Error": message})
}
