package routes

import (
	"net/http"

	"inkwell/app/controllers"
	"inkwell/app/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes defines the JSON API and returns a router.
func SetupRoutes(postController *controllers.PostController, commentController *controllers.CommentController) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.ContentTypeJSON)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/feed", postController.Feed).Methods("GET")

	// Posts API endpoints
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/{id}", postController.Show).Methods("GET")
	posts.HandleFunc("/{id}", postController.Edit).Methods("PUT")
	posts.HandleFunc("/{id}", postController.Delete).Methods("DELETE")

	// Comments API endpoints
	posts.HandleFunc("/{postId}/comments", commentController.Index).Methods("GET")
	posts.HandleFunc("/{postId}/comments", commentController.Create).Methods("POST")

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	return router
}
