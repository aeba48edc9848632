// internal/app/features/books/handler.go
package books

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/audit"
	bookstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/books"
	settingsstore "github.com/Istiyaq-Khan/exam-track-pro/internal/app/store/settings"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auditlog"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/auth"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/filestore"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/httpjson"
	"github.com/Istiyaq-Khan/exam-track-pro/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the study-material library: PDF uploads by teachers and
// admins, browsing and downloads by everyone signed in.
type Handler struct {
	Books    *bookstore.Store
	Files    *filestore.Store
	Settings *settingsstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(books *bookstore.Store, files *filestore.Store, settings *settingsstore.Store, audits *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Books: books, Files: files, Settings: settings, Audit: audits, Log: logger}
}

// Upload handles POST /books as multipart/form-data with fields title,
// author, category, grade, optional description/tags, and the pdf file.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)

	site, err := h.Settings.Get(r.Context())
	if err != nil {
		httpjson.InternalError(w, h.Log, "books: load settings", err)
		return
	}
	if !site.Features.StudyMaterials {
		httpjson.Error(w, http.StatusForbidden, "study materials are disabled")
		return
	}

	maxBytes := int64(site.MaxUploadSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		httpjson.Error(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	category := r.FormValue("category")
	grade := r.FormValue("grade")
	if title == "" {
		httpjson.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if !models.IsValidBookCategory(category) {
		httpjson.Error(w, http.StatusBadRequest, "unknown category")
		return
	}
	if !models.IsValidBookGrade(grade) {
		httpjson.Error(w, http.StatusBadRequest, "unknown grade")
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "pdf file is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		httpjson.Error(w, http.StatusBadRequest, "only PDF files are accepted")
		return
	}

	rel, size, err := h.Files.Save("books", header.Filename, file)
	if err != nil {
		httpjson.InternalError(w, h.Log, "books: store file", err)
		return
	}

	book, err := h.Books.Create(r.Context(), models.Book{
		Title:       title,
		Author:      strings.TrimSpace(r.FormValue("author")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    category,
		Grade:       grade,
		PDFPath:     rel,
		FileName:    header.Filename,
		FileSize:    size,
		UploadedBy:  su.UID,
		Tags:        splitTags(r.FormValue("tags")),
	})
	if err != nil {
		if rmErr := h.Files.Remove(rel); rmErr != nil {
			h.Log.Warn("books: remove orphaned file", zap.String("path", rel), zap.Error(rmErr))
		}
		httpjson.InternalError(w, h.Log, "books: create record", err)
		return
	}

	h.Audit.AdminEvent(r.Context(), r, audit.EventBookUploaded, "", su.UID, book.ID.Hex())
	h.Log.Info("book uploaded",
		zap.String("book_id", book.ID.Hex()),
		zap.String("uploaded_by", su.UID),
		zap.Int64("size", size),
	)
	httpjson.Write(w, http.StatusCreated, book)
}

// ServeList handles GET /books. Supports ?category=, ?grade=, ?q=,
// ?limit=, ?offset=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(query.Get(r, "limit"), 10, 64)
	offset, _ := strconv.ParseInt(query.Get(r, "offset"), 10, 64)
	books, err := h.Books.List(r.Context(), bookstore.ListFilter{
		Category: query.Get(r, "category"),
		Grade:    query.Get(r, "grade"),
		Search:   query.Get(r, "q"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		httpjson.InternalError(w, h.Log, "books: list", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"books": books, "count": len(books)})
}

// ServeOne handles GET /books/{id} and counts a view.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid book id")
		return
	}
	book, err := h.Books.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, bookstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "book not found")
			return
		}
		httpjson.InternalError(w, h.Log, "books: load", err)
		return
	}
	if err := h.Books.IncViews(r.Context(), id); err != nil {
		h.Log.Warn("books: count view", zap.Error(err))
	}
	httpjson.Write(w, http.StatusOK, book)
}

// Download handles GET /books/{id}/download: it bumps the download counter
// and streams the PDF.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid book id")
		return
	}
	book, err := h.Books.IncDownloads(r.Context(), id)
	if err != nil {
		if errors.Is(err, bookstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "book not found")
			return
		}
		httpjson.InternalError(w, h.Log, "books: count download", err)
		return
	}

	f, err := h.Files.Open(book.PDFPath)
	if err != nil {
		h.Log.Error("books: open stored file",
			zap.String("book_id", book.ID.Hex()),
			zap.String("path", book.PDFPath),
			zap.Error(err),
		)
		httpjson.Error(w, http.StatusNotFound, "file missing")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+book.FileName+`"`)
	if _, err := io.Copy(w, f); err != nil {
		h.Log.Warn("books: stream download", zap.Error(err))
	}
}

// Delete handles DELETE /books/{id} (teacher/admin). The record is
// soft-deleted and the stored file removed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	su, _ := auth.CurrentUser(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid book id")
		return
	}
	book, err := h.Books.Deactivate(r.Context(), id)
	if err != nil {
		if errors.Is(err, bookstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "book not found")
			return
		}
		httpjson.InternalError(w, h.Log, "books: deactivate", err)
		return
	}
	if err := h.Files.Remove(book.PDFPath); err != nil {
		h.Log.Warn("books: remove file", zap.String("path", book.PDFPath), zap.Error(err))
	}
	h.Audit.AdminEvent(r.Context(), r, audit.EventBookDeleted, "", su.UID, book.ID.Hex())
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
