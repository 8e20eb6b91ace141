package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Results
		v1.GET("/classes/:class_id/results", handler.GetClassResults)
		v1.GET("/students/:student_id/results", handler.GetStudentResults)

		// Document registry
		v1.POST("/documents/inspect", handler.InspectDocument)
		v1.POST("/documents", handler.UploadDocument)
		v1.GET("/documents", handler.ListDocuments)
		v1.GET("/documents/:id/progress", handler.GetDocumentProgress)
		v1.DELETE("/documents/:id", handler.DeleteDocument)

		// Directory
		v1.GET("/users", handler.ListUsers)
		v1.POST("/users", handler.CreateUser)
		v1.DELETE("/users/:id", handler.DeleteUser)
		v1.GET("/classes", handler.ListClasses)
		v1.POST("/classes", handler.CreateClass)
		v1.DELETE("/classes/:id", handler.DeleteClass)
		v1.GET("/subjects", handler.ListSubjects)
		v1.POST("/subjects", handler.CreateSubject)
		v1.DELETE("/subjects/:id", handler.DeleteSubject)
	}
}
