package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/NahomAnteneh/repo-browser/internal/api/middleware"
	"github.com/NahomAnteneh/repo-browser/internal/page"
	"github.com/NahomAnteneh/repo-browser/internal/storage"
)

// PageResolver resolves route parameters into a view or a *page.NotFoundError
type PageResolver interface {
	Render(ctx context.Context, p page.Params) (*page.View, error)
}

// PageRenderer writes HTML for resolved views and not-found outcomes
type PageRenderer interface {
	Render(w io.Writer, v *page.View) error
	RenderNotFound(w io.Writer, nf *page.NotFoundError) error
}

// ErrorResponse is the JSON body of a failed page request
type ErrorResponse struct {
	Error     string `json:"error"`
	Digest    string `json:"digest,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// GetRepositoryPage handles GET /{account}/{repository}/*
func GetRepositoryPage(resolver PageResolver, renderer PageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.LoggerFromContext(r.Context())
		asJSON := wantsJSON(r)

		params, err := routeParams(r)
		if err != nil {
			writeError(w, r, asJSON, http.StatusBadRequest, "Invalid repository path")
			return
		}

		view, err := resolver.Render(r.Context(), params)
		if err != nil {
			var nf *page.NotFoundError
			switch {
			case errors.As(err, &nf):
				writeNotFound(w, r, asJSON, renderer, nf)
			case errors.Is(err, page.ErrInvalidPath), storage.IsInvalidArgument(err):
				writeError(w, r, asJSON, http.StatusBadRequest, "Invalid repository path")
			default:
				log.WithError(err).Error("Failed to resolve repository page")
				writeError(w, r, asJSON, http.StatusInternalServerError, "Failed to load repository page")
			}
			return
		}

		if asJSON {
			render.JSON(w, r, view)
			return
		}

		var buf bytes.Buffer
		if err := renderer.Render(&buf, view); err != nil {
			log.WithError(err).Error("Failed to render repository page")
			writeError(w, r, false, http.StatusInternalServerError, "Failed to render repository page")
			return
		}
		render.HTML(w, r, buf.String())
	}
}

// routeParams decodes the account, repository and path segments of the request.
// chi matches against the raw path when the URL carries escapes, so segments
// are unescaped only in that case.
func routeParams(r *http.Request) (page.Params, error) {
	unescape := func(s string) (string, error) { return s, nil }
	if r.URL.RawPath != "" {
		unescape = url.PathUnescape
	}

	var params page.Params
	var err error
	if params.AccountID, err = unescape(chi.URLParam(r, "account")); err != nil {
		return params, err
	}
	if params.RepositoryID, err = unescape(chi.URLParam(r, "repository")); err != nil {
		return params, err
	}

	rest := strings.Trim(chi.URLParam(r, "*"), "/")
	if rest == "" {
		return params, nil
	}
	for _, segment := range strings.Split(rest, "/") {
		decoded, err := unescape(segment)
		if err != nil {
			return params, err
		}
		params.Path = append(params.Path, decoded)
	}
	return params, nil
}

// wantsJSON reports whether the Accept header names JSON ahead of HTML.
// A missing header means HTML.
func wantsJSON(r *http.Request) bool {
	for _, field := range strings.Split(r.Header.Get("Accept"), ",") {
		switch render.GetContentType(field) {
		case render.ContentTypeJSON:
			return true
		case render.ContentTypeHTML:
			return false
		}
	}
	return false
}

func writeNotFound(w http.ResponseWriter, r *http.Request, asJSON bool, renderer PageRenderer, nf *page.NotFoundError) {
	render.Status(r, http.StatusNotFound)
	if asJSON {
		render.JSON(w, r, ErrorResponse{
			Error:     "not found",
			Digest:    nf.Digest,
			Reason:    nf.Reason,
			RequestID: middleware.GetRequestID(r.Context()),
		})
		return
	}

	var buf bytes.Buffer
	if err := renderer.RenderNotFound(&buf, nf); err != nil {
		middleware.LoggerFromContext(r.Context()).WithError(err).Error("Failed to render not found page")
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	render.HTML(w, r, buf.String())
}

func writeError(w http.ResponseWriter, r *http.Request, asJSON bool, status int, message string) {
	if !asJSON {
		http.Error(w, message, status)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:     message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}
