package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/asaniustaz/Campusconnect-sub000/internal/config"
	"github.com/asaniustaz/Campusconnect-sub000/internal/directory"
	"github.com/asaniustaz/Campusconnect-sub000/internal/logger"
	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
	"github.com/asaniustaz/Campusconnect-sub000/internal/progress"
	"github.com/asaniustaz/Campusconnect-sub000/internal/registry"
	"github.com/asaniustaz/Campusconnect-sub000/internal/results"
	"github.com/asaniustaz/Campusconnect-sub000/internal/scores"
	pkgerrors "github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

type Handler struct {
	cfg      *config.Config
	dir      directory.Repository
	scores   scores.Repository
	registry *registry.Service
	engine   *results.Engine
	tracker  *progress.Tracker
	validate *validator.Validate
	log      zerolog.Logger
}

func NewHandler(
	cfg *config.Config,
	dir directory.Repository,
	scoresRepo scores.Repository,
	registrySvc *registry.Service,
	engine *results.Engine,
	tracker *progress.Tracker,
) *Handler {
	return &Handler{
		cfg:      cfg,
		dir:      dir,
		scores:   scoresRepo,
		registry: registrySvc,
		engine:   engine,
		tracker:  tracker,
		validate: validator.New(),
		log:      logger.Get(),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// GetClassResults serves the broadsheet for one (class, term).
func (h *Handler) GetClassResults(c *gin.Context) {
	classID := c.Param("class_id")
	session := c.Query("session")
	term := c.Query("term")
	if session == "" || term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session and term are required"})
		return
	}

	ctx := c.Request.Context()
	class, err := h.dir.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrClassNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
			return
		}
		h.internalError(c, err, "Failed to load class")
		return
	}

	students, err := h.dir.ListStudentsInClass(ctx, classID)
	if err != nil {
		h.internalError(c, err, "Failed to load students")
		return
	}
	subjects, err := h.dir.ListSubjectsForSection(ctx, class.Section)
	if err != nil {
		h.internalError(c, err, "Failed to load subjects")
		return
	}
	records, err := h.scores.ListScoresForClass(ctx, session, term, classID)
	if err != nil {
		h.internalError(c, err, "Failed to load scores")
		return
	}

	sets := h.engine.BuildResultSets(students, []model.SchoolClass{*class}, subjects, term, records)
	if len(sets) == 0 {
		// No cohort for this class and term; a valid empty state.
		c.JSON(http.StatusOK, gin.H{"result_set": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result_set": sets[0]})
}

// GetStudentResults serves every term view the student appears in. Ranks
// are computed over the full cohort of each (class, term), not just the
// requested student's rows.
func (h *Handler) GetStudentResults(c *gin.Context) {
	studentID := c.Param("student_id")
	ctx := c.Request.Context()

	if _, err := h.dir.GetUser(ctx, studentID); err != nil {
		if errors.Is(err, pkgerrors.ErrRequesterNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		h.internalError(c, err, "Failed to load student")
		return
	}

	records, err := h.scores.ListScoresForStudent(ctx, studentID)
	if err != nil {
		h.internalError(c, err, "Failed to load scores")
		return
	}

	type cohortKey struct{ session, term, classID string }
	seen := make(map[cohortKey]bool)
	var views []model.StudentResultView
	for _, rec := range records {
		key := cohortKey{rec.Session, rec.Term, rec.ClassID}
		if seen[key] {
			continue
		}
		seen[key] = true

		class, err := h.dir.GetClass(ctx, key.classID)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrClassNotFound) {
				continue // class removed since the scores were recorded
			}
			h.internalError(c, err, "Failed to load class")
			return
		}
		students, err := h.dir.ListStudentsInClass(ctx, key.classID)
		if err != nil {
			h.internalError(c, err, "Failed to load students")
			return
		}
		subjects, err := h.dir.ListSubjectsForSection(ctx, class.Section)
		if err != nil {
			h.internalError(c, err, "Failed to load subjects")
			return
		}
		cohort, err := h.scores.ListScoresForClass(ctx, key.session, key.term, key.classID)
		if err != nil {
			h.internalError(c, err, "Failed to load scores")
			return
		}

		sets := h.engine.BuildResultSets(students, []model.SchoolClass{*class}, subjects, key.term, cohort)
		views = append(views, results.StudentResults(studentID, sets)...)
	}

	c.JSON(http.StatusOK, gin.H{"results": views})
}

// InspectDocument previews the mapping pipeline: placeholders, sheets,
// headers and the auto-derived mapping. Nothing is persisted.
func (h *Handler) InspectDocument(c *gin.Context) {
	var form InspectForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	in, ok := h.readUploadFiles(c)
	if !ok {
		return
	}
	in.SheetName = form.SheetName

	resp, err := h.registry.Inspect(c.Request.Context(), *in)
	if err != nil {
		h.pipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UploadDocument runs the full upload saga and enqueues ingestion.
func (h *Handler) UploadDocument(c *gin.Context) {
	var form UploadForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var overrides map[string]string
	if form.MappingJSON != "" {
		if err := json.Unmarshal([]byte(form.MappingJSON), &overrides); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mapping must be a JSON object"})
			return
		}
	}

	in, ok := h.readUploadFiles(c)
	if !ok {
		return
	}
	in.Session = form.Session
	in.Term = form.Term
	in.ClassID = form.ClassID
	in.SheetName = form.SheetName
	in.Overrides = overrides

	doc, warnings, err := h.registry.Upload(c.Request.Context(), *in)
	if err != nil {
		h.pipelineError(c, err)
		return
	}

	h.log.Info().
		Str("document_id", doc.ID).
		Str("class_id", doc.ClassID).
		Str("term", doc.Term).
		Msg("Document uploaded")

	c.JSON(http.StatusCreated, model.UploadResponse{Document: doc, Warnings: warnings})
}

func (h *Handler) readUploadFiles(c *gin.Context) (*registry.UploadInput, bool) {
	templateName, templateData, err := formFile(c, "template")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template file is required"})
		return nil, false
	}
	resultsName, resultsData, err := formFile(c, "results")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "results file is required"})
		return nil, false
	}

	return &registry.UploadInput{
		TemplateName: templateName,
		TemplateData: templateData,
		ResultsName:  resultsName,
		ResultsData:  resultsData,
	}, true
}

func formFile(c *gin.Context, field string) (string, []byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	file, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

// ListDocuments serves the visibility-filtered registry for the requester
// named by requester_id. The requester is always explicit; there is no
// ambient session.
func (h *Handler) ListDocuments(c *gin.Context) {
	requesterID := c.Query("requester_id")
	if requesterID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requester_id is required"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.dir.GetUser(ctx, requesterID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrRequesterNotFound) {
			// Unknown requester sees nothing; not an error.
			c.JSON(http.StatusOK, gin.H{"documents": []model.StoredDocument{}})
			return
		}
		h.internalError(c, err, "Failed to load requester")
		return
	}

	requester := model.Requester{
		UserID:          user.ID,
		Role:            user.Role,
		AssignedClasses: user.AssignedClasses,
	}
	if user.Section != nil {
		requester.Section = *user.Section
	}
	if user.ClassID != nil {
		requester.ClassID = *user.ClassID
	}

	docs, err := h.registry.ListVisible(ctx, requester)
	if err != nil {
		h.internalError(c, err, "Failed to list documents")
		return
	}
	if docs == nil {
		docs = []model.StoredDocument{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if err := h.registry.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pkgerrors.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		h.internalError(c, err, "Failed to delete document")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

func (h *Handler) GetDocumentProgress(c *gin.Context) {
	resp, err := h.tracker.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, err, "Failed to load progress")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// pipelineError maps the mapping/parse taxonomy onto status codes:
// validation and parse problems are the actor's to fix, everything else is
// internal.
func (h *Handler) pipelineError(c *gin.Context, err error) {
	var verr pkgerrors.ValidationError
	switch {
	case errors.Is(err, pkgerrors.ErrNoMappings),
		errors.Is(err, pkgerrors.ErrSheetNotFound),
		errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pkgerrors.ErrInvalidFileFormat):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, pkgerrors.ErrClassNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
	default:
		h.internalError(c, err, "Pipeline failure")
	}
}

func (h *Handler) internalError(c *gin.Context, err error, msg string) {
	h.log.Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
