package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"jobboard/internal/common"
	"jobboard/internal/http/response"
	"jobboard/internal/upload"
)

type UploadHandler struct {
	storage upload.Storage
}

func NewUploadHandler(storage upload.Storage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// Serve returns a stored file. The extension must be on the serve
// allow-list and the content type is sniffed from the file itself.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	dir, name := chi.URLParam(r, "dir"), chi.URLParam(r, "filename")
	if !upload.IsServable(dir, name) {
		response.Error(w, common.NewError(common.CodeNotFound, "file not found", nil))
		return
	}
	f, err := h.storage.Open(dir, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.Error(w, common.NewError(common.CodeNotFound, "file not found", nil))
			return
		}
		response.Error(w, common.NewError(common.CodeInternal, "failed to open file", err))
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		response.Error(w, common.NewError(common.CodeInternal, "failed to stat file", err))
		return
	}
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		response.Error(w, common.NewError(common.CodeInternal, "failed to detect content type", err))
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		response.Error(w, common.NewError(common.CodeInternal, "failed to read file", err))
		return
	}
	w.Header().Set("Content-Type", mtype.String())
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
