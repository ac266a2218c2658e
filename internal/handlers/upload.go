package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/imgtranslate/internal/batch"
	"github.com/lehigh-university-libraries/imgtranslate/internal/images"
)

const maxUploadFiles = 50

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	// Check if this is a JSON request with image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
		Provider string `json:"provider"`
		Lang     string `json:"lang"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}
	if !images.IsURL(request.ImageURL) {
		h.writeError(w, "image_url must be an http or https URL", http.StatusBadRequest)
		return
	}

	data, filename, err := h.fetcher.Download(r.Context(), request.ImageURL)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	file, err := toBatchFile(filename, data)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.addFiles(w, []batch.File{file}, request.Provider, request.Lang)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadFiles*images.MaxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		h.writeError(w, "No files uploaded", http.StatusBadRequest)
		return
	}
	if len(headers) > maxUploadFiles {
		h.writeError(w, fmt.Sprintf("Too many files (max %d)", maxUploadFiles), http.StatusBadRequest)
		return
	}

	files := make([]batch.File, 0, len(headers))
	for _, header := range headers {
		file, err := readUploadedFile(header)
		if err != nil {
			h.writeError(w, header.Filename+": "+err.Error(), http.StatusBadRequest)
			return
		}
		files = append(files, file)
	}

	h.addFiles(w, files, r.FormValue("provider"), r.FormValue("lang"))
}

func (h *Handler) addFiles(w http.ResponseWriter, files []batch.File, provider, lang string) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	result, err := h.orchestrator.Add(files, batch.Options{Provider: provider, LanguageHint: lang})
	if err != nil {
		h.writeError(w, "Failed to add items: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	slog.Info("Accepted upload", "files", len(files), "credentials_required", result.CredentialsRequired)
	h.writeJSONStatus(w, http.StatusAccepted, result)
}

func readUploadedFile(header *multipart.FileHeader) (batch.File, error) {
	f, err := header.Open()
	if err != nil {
		return batch.File{}, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	// Limit file size to 10MB
	data, err := io.ReadAll(io.LimitReader(f, images.MaxBytes+1))
	if err != nil {
		return batch.File{}, fmt.Errorf("failed to read file contents: %w", err)
	}
	if len(data) > images.MaxBytes {
		return batch.File{}, errors.New("file too large (max 10MB)")
	}

	return toBatchFile(header.Filename, data)
}

func toBatchFile(filename string, data []byte) (batch.File, error) {
	img, err := images.Load(data)
	if err != nil {
		return batch.File{}, err
	}
	return batch.File{Filename: filename, Image: img}, nil
}
