package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const projectListTTL = 5 * time.Minute

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	cache       cache.Cache
}

func newProjectHandler(projectRepo *database.ProjectRepo, c cache.Cache) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		cache:       c,
	}
}

// ProjectCollection represents the public project list
type ProjectCollection struct {
	Projects []*models.Project `json:"projects"`
	Total    int               `json:"total"`
}

// projectRequest holds the editable fields of a project
type projectRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	LongDescription *string  `json:"long_description"`
	Technologies    []string `json:"technologies"`
	GithubURL       *string  `json:"github_url"`
	LiveURL         *string  `json:"live_url"`
	ImageURL        *string  `json:"image_url"`
	Featured        bool     `json:"featured"`
	OrderIndex      int      `json:"order_index"`
}

func (p projectRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.GithubURL, validation.NilOrNotEmpty, is.URL),
		validation.Field(&p.LiveURL, validation.NilOrNotEmpty, is.URL),
		validation.Field(&p.ImageURL, validation.NilOrNotEmpty, is.URL),
		validation.Field(&p.OrderIndex, validation.Min(0)),
	)
}

// apply copies the request onto project
func (p projectRequest) apply(project *models.Project) {
	project.Title = strings.TrimSpace(p.Title)
	project.Description = strings.TrimSpace(p.Description)
	project.LongDescription = p.LongDescription
	project.Technologies = p.Technologies
	project.GithubURL = p.GithubURL
	project.LiveURL = p.LiveURL
	project.ImageURL = p.ImageURL
	project.Featured = p.Featured
	project.OrderIndex = p.OrderIndex
	project.NormalizeTechnologies()
}

func projectListKey(featuredOnly bool) string {
	if featuredOnly {
		return "projects:featured"
	}
	return "projects:all"
}

func (h projectHandler) invalidateList(ctx context.Context) {
	if err := h.cache.Delete(ctx, projectListKey(true), projectListKey(false)); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to invalidate project list cache")
	}
}

func (h projectHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (projectRequest, error) {
	var req projectRequest
	if err := readJSON(w, r, &req); err != nil {
		return req, err
	}
	if err := req.Validate(); err != nil {
		return req, errs.NewValidationError(err)
	}
	return req, nil
}

// getAllProjects retrieves the project list
// @Summary Get all projects
// @Description Retrieves all projects ordered by order_index, optionally only featured ones
// @Tags Projects
// @Produce json
// @Param featured query bool false "Only featured projects"
// @Success 200 {object} ProjectCollection "List of projects"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching projects"
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		featuredOnly := r.URL.Query().Get("featured") == "true"
		key := projectListKey(featuredOnly)

		var response ProjectCollection
		hit, err := cache.GetJSON(r.Context(), h.cache, key, &response)
		if err != nil {
			h.logger.Warn().Err(err).Str("key", key).Msg("Project list cache read failed")
		}
		if hit {
			h.responder.WriteJSON(w, response)
			return
		}

		projects, err := h.projectRepo.FindAll(r.Context(), featuredOnly)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find projects", "projects", err))
			return
		}
		if projects == nil {
			projects = []*models.Project{}
		}

		response = ProjectCollection{Projects: projects, Total: len(projects)}
		if err := cache.SetJSON(r.Context(), h.cache, key, response, projectListTTL); err != nil {
			h.logger.Warn().Err(err).Str("key", key).Msg("Project list cache write failed")
		}

		h.responder.WriteJSON(w, response)
	}
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} models.Project "Project details"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := urlID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a new project
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body projectRequest true "Project data"
// @Success 201 {object} models.Project "Created project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 409 {object} ErrorResponse "Conflict - Duplicate title"
// @Router /admin/project [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.decodeRequest(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var project models.Project
		req.apply(&project)

		if err := h.projectRepo.Add(r.Context(), &project); err != nil {
			h.responder.WriteError(w, wrapWriteError("create", "project", err, duplicateProjectMessage(project.Title)))
			return
		}
		h.invalidateList(r.Context())

		h.logger.Info().Str("projectID", project.ID.String()).Msg("Project created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, project)
	}
}

// updateProject replaces the editable fields of an existing project
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param project body projectRequest true "Updated project data"
// @Success 200 {object} models.Project "Updated project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /admin/project/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := urlID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}

		req, err := h.decodeRequest(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.apply(project)

		if err := h.projectRepo.Update(r.Context(), project); err != nil {
			h.responder.WriteError(w, wrapWriteError("update", "project", err, duplicateProjectMessage(project.Title)))
			return
		}
		h.invalidateList(r.Context())

		h.responder.WriteJSON(w, project)
	}
}

// deleteProject deletes a project by ID
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} DeleteResponse "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /admin/project/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := urlID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}
		h.invalidateList(r.Context())

		h.responder.WriteJSON(w, DeleteResponse{
			Status:  "success",
			Message: fmt.Sprintf("project %s deleted", projectID),
		})
	}
}

func duplicateProjectMessage(title string) string {
	return fmt.Sprintf("a project titled %q already exists", title)
}
