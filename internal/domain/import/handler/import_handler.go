// Package handler exposes the import pipeline over REST: multipart upload
// endpoints for the preview and commit phases.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/paisa-app/paisa-api/internal/domain/import/parser"
	"github.com/paisa-app/paisa-api/internal/domain/import/service"
	"github.com/paisa-app/paisa-api/pkg/auth"
)

// ImportHandler serves the two import endpoints. Both expect a multipart
// form with the spreadsheet under the "file" field and an authenticated
// user in the request context.
type ImportHandler struct {
	svc       *service.ImportService
	maxUpload int64
	logger    *slog.Logger
}

// NewImportHandler creates a handler with the given upload size limit.
func NewImportHandler(svc *service.ImportService, maxUpload int64, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{svc: svc, maxUpload: maxUpload, logger: logger}
}

// Register mounts the import routes on the given router. The router is
// expected to already carry the auth middleware.
func (h *ImportHandler) Register(r *mux.Router) {
	r.HandleFunc("/transactions/import-preview", h.Preview).Methods(http.MethodPost)
	r.HandleFunc("/transactions/import", h.Import).Methods(http.MethodPost)
}

// Preview handles POST /transactions/import-preview.
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	data, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Preview(r.Context(), data, filename)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	preview := result.Preview
	if preview == nil {
		preview = []map[string]string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"totalRows": result.TotalRows,
		"columns":   result.Columns,
		"preview":   preview,
	})
}

// Import handles POST /transactions/import, the commit phase. The file is
// re-read in full; nothing is carried over from a preceding preview.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	data, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Import(r.Context(), userID, data, filename)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	errs := report.ErrorStrings()
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Imported %d transactions, %d failed.", report.Imported, report.Failed),
		"results": map[string]any{
			"success": report.Imported,
			"failed":  report.Failed,
			"errors":  errs,
		},
	})
}

// readUpload pulls the spreadsheet bytes out of the multipart form. On
// failure it writes the error response itself and returns ok=false. Any
// temp files the multipart reader spilled to disk are removed before the
// handler returns.
func (h *ImportHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse multipart upload")
		return nil, "", false
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field")
		return nil, "", false
	}
	defer file.Close()

	if !allowedFilename(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type; upload a .csv, .xlsx, or .xls file")
		return nil, "", false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read upload", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return nil, "", false
	}

	return data, header.Filename, true
}

// allowedFilename accepts the supported spreadsheet extensions and files
// without any extension (content sniffing decides the format for those).
func allowedFilename(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case "", ".csv", ".xlsx", ".xls":
		return true
	default:
		return false
	}
}

func (h *ImportHandler) writeServiceError(w http.ResponseWriter, err error) {
	var formatErr *parser.FormatError
	if errors.As(err, &formatErr) {
		writeError(w, http.StatusBadRequest, formatErr.Message)
		return
	}
	h.logger.Error("import request failed", slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
