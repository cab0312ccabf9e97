package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authz "github.com/yigit/learnhub/internal/app/auth"
	"github.com/yigit/learnhub/internal/app/controllers"
	"github.com/yigit/learnhub/internal/app/validators"
	"github.com/yigit/learnhub/internal/middleware"
)

// registrar mounts handlers behind the gate the policy requires for their
// route name.
type registrar struct {
	group *gin.RouterGroup
	auth  *middleware.AuthMiddleware
}

func (r registrar) handle(method, path string, route authz.Route, handlers ...gin.HandlerFunc) {
	chain := append(r.auth.Gate(route), handlers...)
	r.group.Handle(method, path, chain...)
}

func (r registrar) sub(path string) registrar {
	return registrar{group: r.group.Group(path), auth: r.auth}
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	authMiddleware *middleware.AuthMiddleware,
	rules *validators.Rules,
) {
	api := registrar{group: router.Group("/api"), auth: authMiddleware}

	api.handle(http.MethodGet, "/health", authz.RouteHealth, controllers.Health)

	auth := api.sub("/auth")
	auth.handle(http.MethodPost, "/create-admin", authz.RouteCreateAdmin,
		middleware.ValidateRequest(rules.CreateAdmin), authController.CreateAdmin)
	auth.handle(http.MethodPost, "/register", authz.RouteRegister,
		middleware.ValidateRequest(rules.Register), authController.Register)
	auth.handle(http.MethodPost, "/login", authz.RouteLogin,
		middleware.ValidateRequest(rules.Login), authController.Login)
	auth.handle(http.MethodPost, "/logout", authz.RouteLogout, authController.Logout)

	const course = "/:" + controllers.CourseParam

	courses := api.sub("/courses")
	courses.handle(http.MethodPost, "", authz.RouteCourseStore,
		middleware.ValidateRequest(rules.CourseCreate), courseController.Create)
	courses.handle(http.MethodGet, "", authz.RouteCourseList, courseController.List)
	courses.handle(http.MethodGet, course, authz.RouteCourseShow, courseController.Show)
	courses.handle(http.MethodPut, course, authz.RouteCourseUpdate,
		middleware.ValidateRequest(rules.CourseUpdate), courseController.Update)
	courses.handle(http.MethodDelete, course, authz.RouteCourseDestroy, courseController.Delete)
	courses.handle(http.MethodPost, course+"/publish", authz.RouteCoursePublish, courseController.Publish)
	courses.handle(http.MethodPost, course+"/unpublish", authz.RouteCourseUnpublish, courseController.Unpublish)
	courses.handle(http.MethodPost, course+"/enroll", authz.RouteCourseEnroll, courseController.Enroll)
	courses.handle(http.MethodPost, course+"/unenroll", authz.RouteCourseUnenroll, courseController.Unenroll)

	router.NoRoute(middleware.NoRoute())
}
