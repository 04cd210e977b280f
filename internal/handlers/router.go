package handlers

import (
	"net/http"

	"social-backend/internal/middleware"
	"social-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	gorillaHandlers "github.com/gorilla/handlers"
)

// Deps are the services the HTTP surface is built from. Uploads may be nil.
type Deps struct {
	Auth           *services.AuthService
	Users          *services.UserService
	Posts          *services.PostService
	Notifications  *services.NotificationService
	Search         *services.SearchService
	Uploads        *services.UploadService
	Hub            *services.WSHub
	DB             Pinger
	AllowedOrigins []string
}

// NewRouter builds the HTTP handler for the whole API
func NewRouter(deps Deps) http.Handler {
	authHandler := NewAuthHandler(deps.Auth)
	userHandler := NewUserHandler(deps.Users)
	postHandler := NewPostHandler(deps.Posts)
	notificationHandler := NewNotificationHandler(deps.Notifications, deps.Hub)
	searchHandler := NewSearchHandler(deps.Search)
	uploadHandler := NewUploadHandler(deps.Uploads)
	healthHandler := NewHealthHandler(deps.DB)
	wsHandler := NewWebSocketHandler(deps.Hub, deps.Auth, deps.Notifications, deps.AllowedOrigins)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", healthHandler.Health)
	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(deps.Auth))

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", postHandler.Explore)
				r.Post("/", postHandler.CreatePost)
				r.Get("/following", postHandler.Following)
				r.Get("/saved", postHandler.Saved)
				r.Get("/user/{userId}", postHandler.ByUser)
				r.Put("/{id}/like", postHandler.ToggleLike)
				r.Post("/{id}/comment", postHandler.AddComment)
				r.Post("/{id}/save", postHandler.ToggleSave)
				r.Delete("/{id}", postHandler.DeletePost)
				r.Delete("/{id}/comment/{commentId}", postHandler.DeleteComment)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", userHandler.GetOwnProfile)
				r.Put("/profile", userHandler.UpdateProfile)
				r.Get("/profile/{userId}", userHandler.GetProfile)
				r.Post("/{id}/follow", userHandler.ToggleFollow)
				r.Put("/push-token", userHandler.SetPushToken)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/count", notificationHandler.Count)
				r.Put("/read", notificationHandler.MarkAllRead)
			})

			r.Get("/search", searchHandler.Search)
			r.Post("/uploads/image", uploadHandler.PresignImage)
		})
	})

	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(deps.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	return cors(r)
}
