package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-admin/internal/middleware"
	"github.com/noah-isme/course-admin/internal/models"
)

// CourseRoutes groups what RegisterCourseRoutes mounts.
type CourseRoutes struct {
	Courses *CourseHandler
	// Auth guards mutations. Nil leaves them open.
	Auth gin.HandlerFunc
}

// RegisterCourseRoutes mounts the course catalog under group.
func RegisterCourseRoutes(group *gin.RouterGroup, routes CourseRoutes) {
	courses := group.Group("/courses")
	courses.GET("", routes.Courses.List)
	courses.GET("/export", routes.Courses.Export)
	courses.GET("/:id", routes.Courses.Get)

	mutations := courses.Group("")
	if routes.Auth != nil {
		mutations.Use(routes.Auth, middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin))
	}
	mutations.POST("", routes.Courses.Create)
	mutations.PUT("/:id", routes.Courses.Update)
	mutations.DELETE("/:id", routes.Courses.Delete)
}
