package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	maxResumeSize      = 10 << 20 // 10 MiB
	multipartOverhead  = 1 << 20
	resumeFormField    = "file"
	resumeContentType  = "application/pdf"
	noActiveResumeText = "No active resume found"
)

type resumeHandler struct {
	responder  Responder
	logger     zerolog.Logger
	resumeRepo *database.ResumeRepo
	blobs      storage.BlobStore
}

func newResumeHandler(resumeRepo *database.ResumeRepo, blobs storage.BlobStore) resumeHandler {
	logger := log.With().Str("handlerName", "resumeHandler").Logger()

	return resumeHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		resumeRepo: resumeRepo,
		blobs:      blobs,
	}
}

// uploadResume stores a PDF in blob storage and records it as an inactive resume
// @Summary Upload resume
// @Tags Resumes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume PDF"
// @Success 200 {object} models.ResumeFile "Stored resume"
// @Failure 400 {object} map[string]string "No file provided / Only PDF files are allowed"
// @Failure 413 {object} ErrorResponse "File too large"
// @Failure 502 {object} ErrorResponse "Blob storage failed"
// @Router /admin/resume/upload [post]
func (h resumeHandler) uploadResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.blobs == nil {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("blob storage"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxResumeSize+multipartOverhead)
		if err := r.ParseMultipartForm(maxResumeSize); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxResumeSize))
				return
			}
			h.responder.WriteMessage(w, http.StatusBadRequest, "No file provided")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile(resumeFormField)
		if err != nil {
			h.responder.WriteMessage(w, http.StatusBadRequest, "No file provided")
			return
		}
		defer file.Close()

		mediaType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
		if mediaType != resumeContentType {
			h.responder.WriteMessage(w, http.StatusBadRequest, "Only PDF files are allowed")
			return
		}
		if header.Size > maxResumeSize {
			h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxResumeSize))
			return
		}

		key := storage.ResumeKey(header.Filename)
		url, err := h.blobs.Put(r.Context(), key, file, header.Size, resumeContentType)
		if err != nil {
			h.responder.WriteError(w, errs.NewStorageError("upload", err))
			return
		}

		resume := &models.ResumeFile{
			Filename: header.Filename,
			BlobURL:  url,
			BlobKey:  key,
			FileSize: header.Size,
			IsActive: false,
		}
		if err := h.resumeRepo.Add(r.Context(), resume); err != nil {
			if delErr := h.blobs.Delete(r.Context(), key); delErr != nil {
				h.logger.Error().Err(delErr).Str("key", key).Msg("Failed to remove orphaned resume blob")
			}
			h.responder.WriteError(w, wrapDatabaseError("create", "resume", err))
			return
		}

		h.logger.Info().Str("resumeID", resume.ID.String()).Int64("size", resume.FileSize).Msg("Resume uploaded")
		h.responder.WriteJSON(w, resume)
	}
}

// getResumes lists uploaded resumes, newest first
// @Summary Get resumes
// @Tags Resumes
// @Produce json
// @Success 200 {array} models.ResumeFile "Resumes"
// @Router /admin/resumes [get]
func (h resumeHandler) getResumes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resumes, err := h.resumeRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "resumes", err))
			return
		}
		if resumes == nil {
			resumes = []*models.ResumeFile{}
		}
		h.responder.WriteJSON(w, resumes)
	}
}

// activateResume makes one resume the only active one
// @Summary Activate resume
// @Tags Resumes
// @Produce json
// @Param resumeID path string true "Resume ID" format(uuid)
// @Success 200 {object} models.ResumeFile "Activated resume"
// @Failure 404 {object} ErrorResponse "Not Found - Resume not found"
// @Router /admin/resume/{resumeID}/activate [post]
func (h resumeHandler) activateResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resumeID, err := urlID(r, "resumeID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		resume, err := h.resumeRepo.Activate(r.Context(), resumeID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("activate", "resume", err))
			return
		}

		h.logger.Info().Str("resumeID", resumeID.String()).Msg("Resume activated")
		h.responder.WriteJSON(w, resume)
	}
}

// deleteResume removes the blob and the row of a resume
// @Summary Delete resume
// @Tags Resumes
// @Produce json
// @Param resumeID path string true "Resume ID" format(uuid)
// @Success 200 {object} DeleteResponse "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Resume not found"
// @Router /admin/resume/{resumeID} [delete]
func (h resumeHandler) deleteResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resumeID, err := urlID(r, "resumeID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		resume, err := h.resumeRepo.FindByID(r.Context(), resumeID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "resume", err))
			return
		}

		if h.blobs != nil && resume.BlobKey != "" {
			if err := h.blobs.Delete(r.Context(), resume.BlobKey); err != nil {
				h.logger.Warn().Err(err).Str("key", resume.BlobKey).Msg("Failed to delete resume blob")
			}
		}

		if err := h.resumeRepo.Delete(r.Context(), resumeID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "resume", err))
			return
		}

		h.responder.WriteJSON(w, DeleteResponse{
			Status:  "success",
			Message: fmt.Sprintf("resume %s deleted", resumeID),
		})
	}
}

// findActive writes the 404 for a missing active resume and reports whether one was found
func (h resumeHandler) findActive(w http.ResponseWriter, r *http.Request) (*models.ResumeFile, bool) {
	resume, err := h.resumeRepo.FindActive(r.Context())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.responder.WriteMessage(w, http.StatusNotFound, noActiveResumeText)
		return nil, false
	}
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find", "active resume", err))
		return nil, false
	}
	return resume, true
}

// getActiveResume returns the active resume
// @Summary Get active resume
// @Tags Resumes
// @Produce json
// @Success 200 {object} models.ResumeFile "Active resume"
// @Failure 404 {object} map[string]string "No active resume found"
// @Router /resume/active [get]
func (h resumeHandler) getActiveResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resume, ok := h.findActive(w, r); ok {
			h.responder.WriteJSON(w, resume)
		}
	}
}

// downloadResume redirects to the active resume's blob URL
// @Summary Download active resume
// @Tags Resumes
// @Success 302 "Redirect to the PDF"
// @Failure 404 {object} map[string]string "No active resume found"
// @Router /resume/download [get]
func (h resumeHandler) downloadResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resume, ok := h.findActive(w, r); ok {
			http.Redirect(w, r, resume.BlobURL, http.StatusFound)
		}
	}
}
