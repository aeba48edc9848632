// internal/app/features/blogs/handler.go
package blogs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/policy/rolepolicy"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	blogstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/blogs"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/normalize"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Handler serves the community blog.
type Handler struct {
	Blogs    *blogstore.Store
	Settings *settingsstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger

	content *bluemonday.Policy
	plain   *bluemonday.Policy
}

func NewHandler(blogs *blogstore.Store, settings *settingsstore.Store, audits *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Blogs:    blogs,
		Settings: settings,
		Audit:    audits,
		Log:      logger,
		content:  bluemonday.UGCPolicy(),
		plain:    bluemonday.StrictPolicy(),
	}
}

type blogRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Image   string   `json:"image,omitempty"`
}

// Create handles POST /blogs. The slug is derived from the title; a short
// random suffix resolves collisions instead of failing the post.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	site, err := h.Settings.Get(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "blogs: load settings", err)
		return
	}
	if !site.Features.Blogging {
		httpjson.Error(w, http.StatusForbidden, "blogging is disabled")
		return
	}

	var req blogRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	title := strings.TrimSpace(h.plain.Sanitize(req.Title))
	content := h.content.Sanitize(req.Content)
	if title == "" || strings.TrimSpace(content) == "" {
		httpjson.Error(w, http.StatusBadRequest, "title and content are required")
		return
	}

	blog := models.Blog{
		Title:      title,
		Slug:       normalize.Slug(title),
		Content:    content,
		AuthorUID:  su.UID,
		AuthorName: su.Name,
		Image:      req.Image,
		Tags:       normalizeTags(req.Tags),
	}

	created, err := h.Blogs.Create(r.Context(), blog)
	if errors.Is(err, blogstore.ErrDuplicateSlug) {
		blog.Slug = blog.Slug + "-" + uuid.NewString()[:8]
		created, err = h.Blogs.Create(r.Context(), blog)
	}
	if err != nil {
		httpjson.InternalError(w, h.Log, "blogs: create", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// ServeList handles GET /blogs. Supports ?tag=, ?limit=, ?offset=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(query.Get(r, "limit"), 10, 64)
	offset, _ := strconv.ParseInt(query.Get(r, "offset"), 10, 64)
	blogs, err := h.Blogs.List(r.Context(), query.Get(r, "tag"), limit, offset)
	if err != nil {
		httpjson.InternalError(w, h.Log, "blogs: list", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"blogs": blogs, "count": len(blogs)})
}

// ServeOne handles GET /blogs/{slug}.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	blog, err := h.Blogs.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, blogstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "post not found")
			return
		}
		httpjson.InternalError(w, h.Log, "blogs: load", err)
		return
	}
	httpjson.Write(w, http.StatusOK, blog)
}

// Update handles PUT /blogs/{slug}. Only the author can edit a post.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	slug := chi.URLParam(r, "slug")

	var req blogRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	title := strings.TrimSpace(h.plain.Sanitize(req.Title))
	content := h.content.Sanitize(req.Content)
	if title == "" || strings.TrimSpace(content) == "" {
		httpjson.Error(w, http.StatusBadRequest, "title and content are required")
		return
	}

	updated, err := h.Blogs.UpdateForAuthor(r.Context(), su.UID, slug, title, content, normalizeTags(req.Tags))
	if err != nil {
		if errors.Is(err, blogstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "post not found or not yours")
			return
		}
		httpjson.InternalError(w, h.Log, "blogs: update", err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// Like handles POST /blogs/{slug}/like and toggles the caller's like.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	liked, likes, err := h.Blogs.ToggleLike(r.Context(), chi.URLParam(r, "slug"), su.UID)
	if err != nil {
		if errors.Is(err, blogstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "post not found")
			return
		}
		httpjson.InternalError(w, h.Log, "blogs: toggle like", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"liked": liked, "likes": likes})
}

type commentRequest struct {
	Content string `json:"content"`
}

// Comment handles POST /blogs/{slug}/comments.
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	var req commentRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	content := strings.TrimSpace(h.plain.Sanitize(req.Content))
	if content == "" {
		httpjson.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	comment, err := h.Blogs.AddComment(r.Context(), chi.URLParam(r, "slug"), models.Comment{
		UserUID:         su.UID,
		UserDisplayName: su.Name,
		Content:         content,
	})
	if err != nil {
		if errors.Is(err, blogstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "post not found")
			return
		}
		httpjson.InternalError(w, h.Log, "blogs: add comment", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, comment)
}

// Delete handles DELETE /blogs/{slug}. Authors delete their own posts;
// holders of the content moderation capability can delete anyone's.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	slug := chi.URLParam(r, "slug")

	authorScope := su.UID
	moderator := rolepolicy.CanAccess(su.Role, rolepolicy.CapModerateContent)
	if moderator {
		authorScope = ""
	}

	if err := h.Blogs.Delete(r.Context(), slug, authorScope); err != nil {
		if errors.Is(err, blogstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "post not found or not yours")
			return
		}
		httpjson.InternalError(w, h.Log, "blogs: delete", err)
		return
	}
	if moderator {
		h.Audit.AdminEvent(r.Context(), r, audit.EventBlogDeletedByModerator, "", su.UID, slug)
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = normalize.Slug(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
