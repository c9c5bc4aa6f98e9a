package response

import "github.com/gin-gonic/gin"

// JSON sends a success payload as-is.
func JSON(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

// Error sends the flat error shape every endpoint uses: {"error": message}.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// AbortError is Error for middleware, stopping the handler chain.
func AbortError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"error": message})
}
