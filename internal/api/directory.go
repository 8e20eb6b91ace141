package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/asaniustaz/Campusconnect-sub000/internal/model"
	pkgerrors "github.com/asaniustaz/Campusconnect-sub000/pkg/errors"
)

// Directory CRUD: the admin surface that feeds the aggregation engine and
// the visibility filter.

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.dir.ListUsers(c.Request.Context(), model.Role(c.Query("role")))
	if err != nil {
		h.internalError(c, err, "Failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalError(c, err, "Failed to hash password")
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	user := &model.User{
		ID:              req.ID,
		FirstName:       req.FirstName,
		Surname:         req.Surname,
		MiddleName:      req.MiddleName,
		Email:           req.Email,
		PasswordHash:    string(hash),
		Role:            model.Role(req.Role),
		SchoolSection:   req.SchoolSection,
		ClassID:         req.ClassID,
		RollNumber:      req.RollNumber,
		Department:      req.Department,
		Title:           req.Title,
		AssignedClasses: req.AssignedClasses,
		Section:         req.Section,
	}

	if err := h.dir.CreateUser(c.Request.Context(), user); err != nil {
		var verr pkgerrors.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.internalError(c, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.dir.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.internalError(c, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *Handler) ListClasses(c *gin.Context) {
	ctx := c.Request.Context()
	section := c.Query("section")

	var (
		classes []model.SchoolClass
		err     error
	)
	if section != "" {
		classes, err = h.dir.ListClassesInSection(ctx, section)
	} else {
		classes, err = h.dir.ListClasses(ctx)
	}
	if err != nil {
		h.internalError(c, err, "Failed to list classes")
		return
	}
	if classes == nil {
		classes = []model.SchoolClass{}
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	class := &model.SchoolClass{
		ID:           req.ID,
		Name:         req.Name,
		DisplayLevel: req.DisplayLevel,
		Section:      req.Section,
	}
	if err := h.dir.CreateClass(c.Request.Context(), class); err != nil {
		h.internalError(c, err, "Failed to create class")
		return
	}
	c.JSON(http.StatusCreated, class)
}

func (h *Handler) DeleteClass(c *gin.Context) {
	if err := h.dir.DeleteClass(c.Request.Context(), c.Param("id")); err != nil {
		h.internalError(c, err, "Failed to delete class")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Class deleted"})
}

func (h *Handler) ListSubjects(c *gin.Context) {
	ctx := c.Request.Context()
	section := c.Query("section")

	var (
		subjects []model.Subject
		err      error
	)
	if section != "" {
		subjects, err = h.dir.ListSubjectsForSection(ctx, section)
	} else {
		subjects, err = h.dir.ListSubjects(ctx)
	}
	if err != nil {
		h.internalError(c, err, "Failed to list subjects")
		return
	}
	if subjects == nil {
		subjects = []model.Subject{}
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *Handler) CreateSubject(c *gin.Context) {
	var req CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	subject := &model.Subject{
		ID:            req.ID,
		Title:         req.Title,
		Code:          req.Code,
		SchoolSection: req.SchoolSection,
	}
	if err := h.dir.CreateSubject(c.Request.Context(), subject); err != nil {
		h.internalError(c, err, "Failed to create subject")
		return
	}
	c.JSON(http.StatusCreated, subject)
}

func (h *Handler) DeleteSubject(c *gin.Context) {
	if err := h.dir.DeleteSubject(c.Request.Context(), c.Param("id")); err != nil {
		h.internalError(c, err, "Failed to delete subject")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subject deleted"})
}
