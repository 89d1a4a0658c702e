package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/jrsteele09/wedding-site/images"
	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/rs/zerolog/log"
)

// multipartOverhead covers the form fields and boundaries around the file.
const multipartOverhead = 1 << 20

type uploadResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	URL     string `json:"url"`
}

func (s *Server) UploadImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxBytes := s.config.GetMaxUploadBytes()
		tooLarge := "File too large. Maximum size is " + uploadLimit(maxBytes) + "."

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusBadRequest, tooLarge)
				return
			}
			writeError(w, http.StatusBadRequest, "No file provided")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No file provided")
			return
		}
		defer file.Close()

		folder := r.FormValue("folder")
		if !images.ValidFolder(folder) {
			writeError(w, http.StatusBadRequest, "Invalid folder. Must be 'gallery' or 'events'")
			return
		}
		if header.Size > maxBytes {
			writeError(w, http.StatusBadRequest, tooLarge)
			return
		}

		contentType := header.Header.Get("Content-Type")
		key, err := images.NewKey(folder, contentType)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid file type. Allowed: JPEG, PNG, WebP, GIF.")
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			log.Err(err).Msg("Failed to read upload")
			writeError(w, http.StatusInternalServerError, "Failed to upload image")
			return
		}
		if int64(len(data)) > maxBytes {
			writeError(w, http.StatusBadRequest, tooLarge)
			return
		}

		img := &images.Image{
			Key:          key,
			ContentType:  contentType,
			CacheControl: images.CacheControl,
			Data:         data,
		}
		if err := s.repos.Images.Put(r.Context(), img); err != nil {
			log.Err(err).Str("key", key).Msg("Upload failed")
			writeError(w, http.StatusInternalServerError, "Failed to upload image")
			return
		}

		writeJSON(w, http.StatusCreated, uploadResponse{
			Success: true,
			Key:     key,
			URL:     images.PublicURL(s.imagesBaseURL(), key),
		})
	}
}

// DeleteImageHandler handles DELETE /api/upload?key=K.
func (s *Server) DeleteImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if key == "" {
			writeError(w, http.StatusBadRequest, "Missing key parameter")
			return
		}
		if !images.ValidKey(key) {
			writeError(w, http.StatusBadRequest, "Invalid key")
			return
		}

		if err := s.repos.Images.Delete(r.Context(), key); err != nil {
			log.Err(err).Str("key", key).Msg("Image delete failed")
			writeError(w, http.StatusInternalServerError, "Failed to delete image")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Image deleted"})
	}
}

// ServeImageHandler streams a stored image with long-lived cache headers.
// Conditional and range requests are handled by http.ServeContent.
func (s *Server) ServeImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		if !images.ValidKey(key) {
			http.Error(w, msgNotFound, http.StatusNotFound)
			return
		}

		img, err := s.repos.Images.Get(r.Context(), key)
		if errors.Is(err, errors.ErrNotFound) {
			http.Error(w, msgNotFound, http.StatusNotFound)
			return
		}
		if err != nil {
			log.Err(err).Str("key", key).Msg("Image fetch failed")
			http.Error(w, msgInternalError, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", img.ContentTypeOr())
		w.Header().Set("Cache-Control", img.CacheControlOr())
		if img.ETag != "" {
			w.Header().Set("ETag", img.ETag)
		}
		http.ServeContent(w, r, key, img.CreatedAt, bytes.NewReader(img.Data))
	}
}

// imagesBaseURL is IMAGES_PUBLIC_URL, or this server's image route.
func (s *Server) imagesBaseURL() string {
	if base := s.config.GetImagesPublicURL(); base != "" {
		return base
	}
	return s.config.GetSiteOrigin() + RouteImages
}

// uploadLimit renders the limit for client messages, "5MB" for whole megabytes.
func uploadLimit(maxBytes int64) string {
	if maxBytes >= 1<<20 && maxBytes%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", maxBytes>>20)
	}
	return humanize.IBytes(uint64(maxBytes))
}
