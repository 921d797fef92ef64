package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/angtech/catalog-api/internal/infra/observability"
	"github.com/angtech/catalog-api/internal/infra/upload"

	"go.uber.org/zap"
)

// ============================================================
// Image upload — POST /api/upload
// ============================================================

type uploadResponse struct {
	Message string   `json:"message"`
	URLs    []string `json:"urls"`
}

// uploadImagesHandler accepts a multipart form with an "images" field and
// stores each file, returning the /uploads/ URL paths. The whole batch is
// validated before any file is written, so a rejected file rejects the
// request without partial results.
func uploadImagesHandler(store *upload.Storage, metrics *observability.Metrics, maxFiles int, maxSize int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /api/upload")
		defer span.End()

		if err := r.ParseMultipartForm(maxSize); err != nil {
			metrics.IncrUpload("rejected")
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		files := r.MultipartForm.File["images"]
		if len(files) == 0 {
			metrics.IncrUpload("rejected")
			writeError(w, http.StatusBadRequest, "no files in images field")
			return
		}
		if len(files) > maxFiles {
			metrics.IncrUpload("rejected")
			writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d files per upload", maxFiles))
			return
		}

		for _, fh := range files {
			if fh.Size > maxSize {
				metrics.IncrUpload("rejected")
				writeError(w, http.StatusBadRequest, fmt.Sprintf("%s exceeds the %d byte limit", fh.Filename, maxSize))
				return
			}
			ok, err := isImage(fh)
			if err != nil {
				metrics.IncrUpload("rejected")
				handleServiceError(w, err, logger)
				return
			}
			if !ok {
				metrics.IncrUpload("rejected")
				writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is not an image", fh.Filename))
				return
			}
		}

		urls := make([]string, 0, len(files))
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				metrics.IncrUpload("rejected")
				handleServiceError(w, err, logger)
				return
			}
			name, err := store.Save(f, filepath.Ext(fh.Filename))
			f.Close()
			if err != nil {
				metrics.IncrUpload("rejected")
				handleServiceError(w, err, logger)
				return
			}
			urls = append(urls, path.Join("/uploads", name))
		}

		metrics.IncrUpload("accepted")
		logger.Info("images uploaded", zap.Int("count", len(urls)))
		writeJSON(w, http.StatusCreated, uploadResponse{Message: "images uploaded", URLs: urls})
	}
}

// isImage checks the declared content type and sniffs the first bytes,
// trusting the sniffed type when the two disagree.
func isImage(fh *multipart.FileHeader) (bool, error) {
	declared := fh.Header.Get("Content-Type")
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return false, nil
	}

	f, err := fh.Open()
	if err != nil {
		return false, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return false, nil
	}
	return strings.HasPrefix(http.DetectContentType(buf[:n]), "image/"), nil
}
