package handlers

import (
	"inkwell/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Inject Current User
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message, "Code": code})
}

// cloneH shallow-copies render data. Maps that outlive the request, like
// cached feed pages, must never be handed to Render directly.
func cloneH(h gin.H) gin.H {
	out := make(gin.H, len(h)+2)
	for k, v := range h {
		out[k] = v
	}
	return out
}
