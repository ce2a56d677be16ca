package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/projecteru2/labflow/internal/models"
	"github.com/projecteru2/labflow/internal/service"
	"github.com/projecteru2/labflow/pkg/log"
	"github.com/projecteru2/labflow/pkg/terrors"
)

func newAPIHandler(svc service.Service, recordsFile string) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	var api = &apiServer{service: svc, recordsFile: recordsFile}
	var router = gin.New()
	router.Use(gin.Recovery())

	var v1 = router.Group("/v1")
	{
		v1.GET("/ping", api.Ping)
		v1.GET("/health", api.Health)

		v1.GET("/connections", api.ListConnections)
		v1.GET("/connections/:handler", api.GetConnection)
		v1.POST("/connections", api.CreateConnection)
		v1.DELETE("/connections/:handler", api.DeleteConnection)

		v1.GET("/students", api.ListStudents)
		v1.GET("/students/:code", api.GetStudent)
		v1.POST("/students", api.CreateStudent)

		v1.GET("/courses", api.ListCourses)
		v1.GET("/courses/:code", api.GetCourse)
		v1.POST("/courses", api.CreateCourse)
		v1.DELETE("/courses/:code", api.DeleteCourse)
		v1.POST("/courses/:code/students", api.Enroll)
		v1.DELETE("/courses/:code/students/:student", api.Unenroll)

		v1.GET("/servers", api.ListServers)
		v1.GET("/servers/:name", api.GetServer)
	}

	return router
}

type apiServer struct {
	service     service.Service
	recordsFile string
}

type msg struct {
	Msg string `json:"msg"`
}

type errMsg struct {
	Error string `json:"error"`
}

var okMsg = msg{Msg: "ok"}

func (s *apiServer) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Ping())
}

func (s *apiServer) Health(c *gin.Context) {
	if err := s.service.CheckHealth(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, errMsg{Error: err.Error()})
		return
	}
	s.renderOKMsg(c)
}

func (s *apiServer) ListConnections(c *gin.Context) {
	s.dispatch(c, nil, func(ctx context.Context) (any, error) {
		return s.service.ListConnections(ctx)
	})
}

func (s *apiServer) GetConnection(c *gin.Context) {
	s.dispatch(c, nil, func(ctx context.Context) (any, error) {
		return s.service.GetConnection(ctx, c.Param("handler"))
	})
}

// provisionResp carries the per rule outcome even when some rules failed.
type provisionResp struct {
	*service.Provisioned
	Error string `json:"error,omitempty"`
}

func (s *apiServer) CreateConnection(c *gin.Context) {
	var req service.ConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderErr(c, errors.Mark(err, terrors.ErrInvalidValue))
		return
	}

	p, err := s.service.Provision(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, provisionResp{Provisioned: p})
	case p != nil:
		c.JSON(statusOf(err), provisionResp{Provisioned: p, Error: err.Error()})
	default:
		s.renderErr(c, err)
	}
}

func (s *apiServer) DeleteConnection(c *gin.Context) {
	s.dispatch(c, nil, func(ctx context.Context) (any, error) {
		results, err := s.service.Teardown(ctx, c.Param("handler"))
		if err != nil && len(results) > 0 {
			return nil, errors.Wrapf(err, "failed rules: %v", results.Failed())
		}
		return results, err
	})
}

func (s *apiServer) ListStudents(c *gin.Context) {
	c.JSON(http.StatusOK, s.records().Students())
}

func (s *apiServer) GetStudent(c *gin.Context) {
	s.dispatch(c, nil, func(context.Context) (any, error) {
		code, err := strconv.Atoi(c.Param("code"))
		if err != nil {
			return nil, errors.Mark(err, terrors.ErrInvalidValue)
		}
		return s.records().Student(code)
	})
}

func (s *apiServer) CreateStudent(c *gin.Context) {
	var st models.Student
	s.dispatchMutation(c, &st, func() error {
		return s.records().AddStudent(st)
	})
}

func (s *apiServer) ListCourses(c *gin.Context) {
	c.JSON(http.StatusOK, s.records().Courses())
}

func (s *apiServer) GetCourse(c *gin.Context) {
	s.dispatch(c, nil, func(context.Context) (any, error) {
		return s.records().Course(c.Param("code"))
	})
}

func (s *apiServer) CreateCourse(c *gin.Context) {
	var course models.Course
	s.dispatchMutation(c, &course, func() error {
		return s.records().AddCourse(course)
	})
}

func (s *apiServer) DeleteCourse(c *gin.Context) {
	s.dispatchMutation(c, nil, func() error {
		return s.records().DeleteCourse(c.Param("code"))
	})
}

type enrollReq struct {
	Student int `json:"student" binding:"required"`
}

func (s *apiServer) Enroll(c *gin.Context) {
	var req enrollReq
	s.dispatchMutation(c, &req, func() error {
		return s.records().Enroll(c.Param("code"), req.Student)
	})
}

func (s *apiServer) Unenroll(c *gin.Context) {
	s.dispatchMutation(c, nil, func() error {
		code, err := strconv.Atoi(c.Param("student"))
		if err != nil {
			return errors.Mark(err, terrors.ErrInvalidValue)
		}
		return s.records().Unenroll(c.Param("code"), code)
	})
}

func (s *apiServer) ListServers(c *gin.Context) {
	c.JSON(http.StatusOK, s.records().Servers())
}

// GetServer accepts a name or an ip.
func (s *apiServer) GetServer(c *gin.Context) {
	s.dispatch(c, nil, func(context.Context) (any, error) {
		var key = c.Param("name")
		if srv, err := s.records().Server(key); err == nil {
			return srv, nil
		}
		return s.records().ServerByIP(key)
	})
}

func (s *apiServer) records() *models.Database {
	return s.service.Records()
}

// dispatchMutation binds req, applies fn then saves the records file if any.
func (s *apiServer) dispatchMutation(c *gin.Context, req any, fn func() error) {
	s.dispatch(c, req, func(ctx context.Context) (any, error) {
		if err := fn(); err != nil {
			return nil, err
		}
		if len(s.recordsFile) > 0 {
			if err := s.records().Export(s.recordsFile); err != nil {
				log.WithFunc("httpserver.dispatchMutation").Errorf(ctx, err, "failed to save %s", s.recordsFile)
				return nil, err
			}
		}
		return nil, nil
	})
}

type operate func(context.Context) (any, error)

func (s *apiServer) dispatch(c *gin.Context, req any, fn operate) {
	if req != nil {
		if err := c.ShouldBindJSON(req); err != nil {
			s.renderErr(c, errors.Mark(err, terrors.ErrInvalidValue))
			return
		}
	}

	var resp, err = fn(c.Request.Context())
	if err != nil {
		s.renderErr(c, err)
		return
	}

	if resp == nil {
		s.renderOKMsg(c)
	} else {
		c.JSON(http.StatusOK, resp)
	}
}

func (s *apiServer) renderOKMsg(c *gin.Context) {
	c.JSON(http.StatusOK, okMsg)
}

func (s *apiServer) renderErr(c *gin.Context, err error) {
	c.JSON(statusOf(err), errMsg{Error: err.Error()})
}

func statusOf(err error) int {
	switch {
	case terrors.IsKeyNotExistsErr(err), terrors.IsConnectionNotExistsErr(err):
		return http.StatusNotFound
	case terrors.IsKeyExistsErr(err), terrors.IsConnectionExistsErr(err),
		errors.Is(err, terrors.ErrOperationInProgress):
		return http.StatusConflict
	case terrors.IsUnauthorizedErr(err):
		return http.StatusForbidden
	case errors.Is(err, terrors.ErrInvalidValue), terrors.IsConfigurationErr(err):
		return http.StatusBadRequest
	case terrors.IsRouteErr(err), terrors.IsResolutionErr(err), terrors.IsInstallErr(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
