package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/service"
)

const maxUploadMemory = 10 << 20 // 10 MiB

// FileResponse is the public shape of file metadata
type FileResponse struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Mimetype   string    `json:"mimetype"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toFileResponse(f *domain.File) FileResponse {
	return FileResponse{
		ID:         f.ID,
		Filename:   f.Filename,
		Mimetype:   f.Mimetype,
		Size:       f.Size,
		UploadedAt: f.UploadedAt,
	}
}

// FileHandler handles file uploads, downloads and profile pictures
type FileHandler struct {
	fileService *service.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{fileService: fileService, logger: logger}
}

// readUpload extracts the "file" part from a multipart form
func (h *FileHandler) readUpload(r *http.Request) (filename, mimetype string, data []byte, err error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return "", "", nil, domain.Validation("invalid multipart form")
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, domain.Validation("file field is required")
	}
	defer part.Close()

	data, err = io.ReadAll(io.LimitReader(part, maxUploadMemory+1))
	if err != nil {
		return "", "", nil, domain.Validation("failed to read file")
	}
	return header.Filename, header.Header.Get("Content-Type"), data, nil
}

// Upload handles POST /api/files
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filename, mimetype, data, err := h.readUpload(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	file, err := h.fileService.Upload(r.Context(), actor, filename, mimetype, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFileResponse(file))
}

// List handles GET /api/files (admin only)
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	files, err := h.fileService.List(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toFileResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/files/{id} (metadata only)
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := actorFrom(r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	file, err := h.fileService.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileResponse(file))
}

// Download handles GET /api/files/{id}/download
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	if _, err := actorFrom(r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	file, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", file.Mimetype)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}

// Delete handles DELETE /api/files/{id}
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.fileService.Delete(r.Context(), actor, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}

// SetProfilePicture handles PUT /api/users/me/profile-picture
func (h *FileHandler) SetProfilePicture(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filename, mimetype, data, err := h.readUpload(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	file, err := h.fileService.SetProfilePicture(r.Context(), actor, filename, mimetype, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFileResponse(file))
}

// GetProfilePicture handles GET /api/users/{id}/profile-picture
func (h *FileHandler) GetProfilePicture(w http.ResponseWriter, r *http.Request) {
	if _, err := actorFrom(r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.serveProfilePicture(w, r, userID)
}

// GetMyProfilePicture handles GET /api/users/me/profile-picture
func (h *FileHandler) GetMyProfilePicture(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.serveProfilePicture(w, r, actor.UserID)
}

// RemoveProfilePicture handles DELETE /api/users/me/profile-picture
func (h *FileHandler) RemoveProfilePicture(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.fileService.RemoveProfilePicture(r.Context(), actor); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile picture removed"})
}

func (h *FileHandler) serveProfilePicture(w http.ResponseWriter, r *http.Request, userID int64) {
	file, err := h.fileService.GetProfilePicture(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", file.Mimetype)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}
