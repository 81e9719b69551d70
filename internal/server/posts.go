package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"reviewshelf/internal/app"
	"reviewshelf/pkg/domain"
)

// idRequest is the body for the post-by-id operations.
type idRequest struct {
	ID int64 `json:"id"`
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	var query app.FeedQuery
	switch r.Method {
	case http.MethodGet:
		// sorted/filtered views arrive as a form POST from the page;
		// a plain GET is the unfiltered feed.
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		query = app.FeedQuery{
			Genre:      r.PostFormValue("genre"),
			Rating:     r.PostFormValue("ratingValue"),
			GenreSort:  r.PostFormValue("genresort"),
			RatingSort: r.PostFormValue("ratingssort"),
			DateSort:   r.PostFormValue("datesort"),
			Clear:      r.PostFormValue("clear"),
		}
	default:
		methodNotAllowed(w)
		return
	}
	result, err := s.app.Feed(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeView(w, http.StatusOK, "reviews", map[string]any{
		"reviews":   result.Reviews,
		"filtered":  result.Filtered,
		"hasFilter": result.HasFilter,
	})
}

// handleView shows a single published review. Reviews are public, so
// no session is required.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req idRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	review, err := s.app.GetReview(req.ID)
	if err != nil {
		s.writePostError(w, err)
		return
	}
	writeView(w, http.StatusOK, "viewreview", map[string]any{
		"review": review,
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		writeView(w, http.StatusOK, "create", nil)
	case http.MethodPost:
		input, action, ok := postForm(w, r)
		if !ok {
			return
		}
		if _, err := s.app.CreatePost(user, input, action); err != nil {
			s.writeFormError(w, "create", input, err)
			return
		}
		http.Redirect(w, r, "/myposts", http.StatusSeeOther)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	input, action, ok := postForm(w, r)
	if !ok {
		return
	}
	if action != domain.ActionSaveChanges {
		writeError(w, http.StatusBadRequest, app.ErrUnknownAction.Error())
		return
	}
	id, err := formID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	if _, err := s.app.SavePost(user, id, input); err != nil {
		s.writeFormError(w, "edit", input, err)
		return
	}
	http.Redirect(w, r, "/myposts", http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req idRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.DeletePost(user, req.ID); err != nil {
		s.writePostError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req idRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post, err := s.app.PublishPost(user, req.ID)
	if err != nil {
		s.writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleEdit loads an owned post for the edit form. The id comes in
// the body rather than from a client-supplied copy of the post.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req idRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post, err := s.app.GetPost(user, req.ID)
	if err != nil {
		s.writePostError(w, err)
		return
	}
	writeView(w, http.StatusOK, "edit", map[string]any{
		"post": post,
	})
}

func (s *Server) handleMyPosts(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	drafts, published, err := s.app.MyPosts(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeView(w, http.StatusOK, "myposts", map[string]any{
		"drafts":    drafts,
		"published": published,
	})
}

// postForm parses the review form. The reported ok is false when a
// response has already been written.
func postForm(w http.ResponseWriter, r *http.Request) (app.PostInput, domain.PostAction, bool) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return app.PostInput{}, "", false
	}
	input := app.PostInput{
		Title:      r.PostFormValue("title"),
		BookAuthor: r.PostFormValue("bookauthor"),
		Genre:      r.PostFormValue("genre"),
		Author:     r.PostFormValue("author"),
		ISBN:       r.PostFormValue("isbn"),
		Summary:    r.PostFormValue("summary"),
		Content:    r.PostFormValue("content"),
		Rating:     r.PostFormValue("rating"),
	}
	return input, domain.PostAction(r.PostFormValue("action")), true
}

func formID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PostFormValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", raw)
	}
	return id, nil
}

// writeFormError re-renders the authoring form. An invalid ISBN echoes
// the submitted fields back with the errorisbn flag so nothing typed
// is lost.
func (s *Server) writeFormError(w http.ResponseWriter, view string, input app.PostInput, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidISBN):
		writeView(w, http.StatusUnprocessableEntity, view, map[string]any{
			"errorisbn": 1,
			"post":      input,
		})
	case errors.Is(err, app.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writePostError(w, err)
	}
}

func (s *Server) writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrForbidden):
		// Same opaque rejection as a missing session.
		writeError(w, http.StatusNotFound, unauthorizedMessage)
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
