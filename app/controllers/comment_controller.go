package controllers

import (
	"net/http"

	"inkwell/app/services"

	"github.com/gorilla/mux"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

type commentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Index lists the comments of a post, oldest first
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	state, err := cc.commentService.ListPostComments(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		sendFailure(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, state)
}

// Create adds a comment and returns the refreshed thread
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	state, err := cc.commentService.CreateComment(r.Context(), mux.Vars(r)["postId"], req.Author, req.Text)
	if err != nil {
		sendFailure(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, state)
}
