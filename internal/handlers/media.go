// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/identity"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/serializer"
	"inkwell/internal/storage"
)

const (
	// altTextMaxLen matches the media.alt_text column.
	altTextMaxLen = 255

	// sniffLen is how many bytes content detection looks at.
	sniffLen = 512

	// multipartOverhead is allowed on top of the file for the other parts.
	multipartOverhead = 1 << 20
)

// allowedImageTypes are the sniffed content types accepted for upload.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Media groups the image upload handlers.
type Media struct {
	media  MediaStore
	assets AssetStore
	opts   Options
}

// NewMedia creates the media handler group. assets may be nil, in which
// case uploads answer 503.
func NewMedia(media MediaStore, assets AssetStore, opts Options) *Media {
	return &Media{media: media, assets: assets, opts: opts}
}

func (h *Media) shaper(r *http.Request) serializer.Shaper {
	s := serializer.Shaper{Base: h.opts.baseURL(r)}
	if h.assets != nil {
		s.Assets = h.assets
	}
	return s
}

// Upload accepts a multipart image in the "file" field and stores it in
// the asset store.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	p := identity.FromContext(r.Context())
	if !p.IsAuthenticated() {
		render.Error(w, r, apperr.Unauthenticated())
		return
	}
	if h.assets == nil {
		render.DetailJSON(w, http.StatusServiceUnavailable, "Media storage is not configured.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, models.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(models.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Error(w, r, apperr.Invalid("file", tooLargeMsg()))
			return
		}
		render.Error(w, r, apperr.Invalid("file", "The submitted data was not a file. Check the encoding type on the form."))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		render.Error(w, r, apperr.Invalid("file", "No file was submitted."))
		return
	}
	defer file.Close()

	v := apperr.NewValidation()
	if header.Size == 0 {
		v.Add("file", "The submitted file is empty.")
	}
	if header.Size > models.MaxUploadBytes {
		v.Add("file", tooLargeMsg())
	}
	altText := strings.TrimSpace(r.FormValue("alt_text"))
	if utf8.RuneCountInString(altText) > altTextMaxLen {
		v.Add("alt_text", fmt.Sprintf("Ensure this field has no more than %d characters.", altTextMaxLen))
	}
	if err := v.Err(); err != nil {
		render.Error(w, r, err)
		return
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		render.Error(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedImageTypes[contentType] {
		render.Error(w, r, apperr.Invalid("file", "Upload a valid image. The file you uploaded was either not an image or a corrupted image."))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		render.Error(w, r, fmt.Errorf("rewind upload: %w", err))
		return
	}

	key := storage.ObjectKey(uuid.New(), header.Filename, h.opts.now())
	if err := h.assets.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		render.Error(w, r, &apperr.TransientError{Op: "upload media", Err: err})
		return
	}

	m := &models.Media{
		Filename:     path.Base(key),
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    header.Size,
		S3Key:        key,
		AltText:      altText,
		UploaderID:   &p.UserID,
	}
	if err := h.media.Create(r.Context(), m); err != nil {
		if delErr := h.assets.Delete(r.Context(), key); delErr != nil {
			slog.Warn("orphaned uploaded object", "key", key, "error", delErr)
		}
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, h.shaper(r).Media(m))
}

// Retrieve returns one media record with its resolved URL.
func (h *Media) Retrieve(w http.ResponseWriter, r *http.Request) {
	m, err := h.find(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, h.shaper(r).Media(m))
}

// Delete removes a media record and its stored object. Articles that used
// it lose the reference. Only the uploader or staff may delete.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	p := identity.FromContext(r.Context())
	if !p.IsAuthenticated() {
		render.Error(w, r, apperr.Unauthenticated())
		return
	}

	m, err := h.find(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if !p.IsStaff && !m.OwnedBy(p.UserID) {
		render.Error(w, r, apperr.Forbidden("Only the uploader or staff may delete this file."))
		return
	}

	if err := h.media.Delete(r.Context(), m.ID); err != nil {
		render.Error(w, r, err)
		return
	}
	if h.assets != nil {
		if err := h.assets.Delete(r.Context(), m.S3Key); err != nil {
			slog.Warn("delete stored object failed", "key", m.S3Key, "error", err)
		}
	}
	render.NoContent(w)
}

func (h *Media) find(r *http.Request) (*models.Media, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, apperr.NotFound("media")
	}
	m, err := h.media.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("media")
	}
	return m, nil
}

func tooLargeMsg() string {
	return fmt.Sprintf("Ensure this file is no larger than %s.", (&models.Media{SizeBytes: models.MaxUploadBytes}).HumanSize())
}
