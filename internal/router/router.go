package router

import (
	"net/http"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// New assembles the engine: sessions, templates, static files, middleware
// and the route table.
func New(sessionSecret, templatesDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		handlers.RenderError(c, http.StatusInternalServerError, "Something went wrong")
	}))

	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("inkwell_session", store))

	r.HTMLRender = LoadTemplates(templatesDir)

	// Uploaded post images
	r.Static("/media", services.UploadDir())

	r.Use(middleware.LoadUser())

	RegisterRoutes(r)

	return r
}

func RegisterRoutes(r *gin.Engine) {
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	groupHandler := handlers.NewGroupHandler()
	profileHandler := handlers.NewProfileHandler()
	followHandler := handlers.NewFollowHandler()

	// Public routes
	r.GET("/", postHandler.Index)            // Global feed
	r.GET("/search", postHandler.Search)     // Keyword feed
	r.GET("/groups", groupHandler.List)      // All groups
	r.GET("/group/:slug", groupHandler.Feed) // Group feed

	r.GET("/auth/signup", authHandler.ShowRegister)
	r.POST("/auth/signup", authHandler.Register)
	r.GET("/auth/login", authHandler.ShowLogin)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/logout", authHandler.Logout)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/new", postHandler.ShowCreate)
		authorized.POST("/new", postHandler.Create)
		authorized.GET("/follow", followHandler.Feed) // Followed-authors feed

		authorized.GET("/:username/follow", followHandler.Follow)
		authorized.GET("/:username/unfollow", followHandler.Unfollow)
		authorized.GET("/:username/:post_id/edit", postHandler.ShowEdit)
		authorized.POST("/:username/:post_id/edit", postHandler.Update)
		authorized.POST("/:username/:post_id/comment", postHandler.AddComment)
		authorized.POST("/:username/:post_id/delete", postHandler.Delete)
	}

	// Profile and post detail, matched after the static routes above
	r.GET("/:username", profileHandler.Show)
	r.GET("/:username/:post_id", postHandler.Detail)

	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, "Page not found")
	})
}
