package controllers

import (
	"net/http"
	"strconv"

	"inkwell/app/models"
	"inkwell/app/services"

	"github.com/gorilla/mux"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Index lists posts through the keyed cache. ?author= narrows by author.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	state, err := pc.postService.ListPosts(r.Context(), r.URL.Query().Get("author"))
	if err != nil {
		sendJSON(w, http.StatusBadGateway, state)
		return
	}
	sendJSON(w, http.StatusOK, state)
}

// Feed issues a reducer load and returns the list state. With ?wait=true
// the response is sent after the load settles.
func (pc *PostController) Feed(w http.ResponseWriter, r *http.Request) {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	sendJSON(w, http.StatusOK, pc.postService.Feed(r.Context(), wait))
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.postService.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendFailure(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var in models.PostInput
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), in)
	if err != nil {
		sendFailure(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Edit applies the fields present in the body to a post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	var patch models.PostPatch
	if err := decodeJSON(r, &patch); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		sendFailure(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := pc.postService.DeletePost(r.Context(), mux.Vars(r)["id"]); err != nil {
		sendFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
