// Package api binds declared parameters to gin routes and renders handler
// results and errors as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"catalog-svc/middleware"
	"catalog-svc/models"
	"catalog-svc/schema"
	"catalog-svc/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalError = "Internal server error"

// Params holds bound parameter values keyed by schema name.
type Params map[string]any

func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

func (p Params) Object(name string) map[string]any {
	m, _ := p[name].(map[string]any)
	return m
}

// Float reads a bound number from the object parameter obj.
func (p Params) Float(obj, field string) float64 {
	f, _ := p.Object(obj)[field].(float64)
	return f
}

// HandlerFunc receives only parameters that passed validation. It returns a
// value to serialize with 200, or a Response to pick another status.
type HandlerFunc func(ctx context.Context, p Params) (any, error)

type Response struct {
	Status int
	Body   any
}

type Router struct {
	engine *gin.Engine
	logger *zap.Logger
}

// NewRouter installs recovery and 404 handling on engine.
func NewRouter(engine *gin.Engine, logger *zap.Logger) *Router {
	r := &Router{engine: engine, logger: logger}
	engine.Use(gin.CustomRecovery(r.recover))
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	})
	return r
}

// Handle registers h for method and path. A trailing named segment also
// matches an empty segment, so "/hello/" is rejected by validation rather
// than falling through to 404.
func (r *Router) Handle(method, path string, params []schema.Schema, h HandlerFunc) {
	hf := r.wrap(params, h)
	r.engine.Handle(method, path, hf)

	if i := strings.LastIndex(path, "/"); i >= 0 && strings.HasPrefix(path[i+1:], ":") {
		r.engine.Handle(method, path[:i+1], hf)
	}
}

func (r *Router) wrap(params []schema.Schema, h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		bound := make(Params, len(params))
		for _, s := range params {
			raw, err := extract(c, s)
			if err != nil {
				r.fail(c, err)
				return
			}
			v, err := schema.Validate(s, raw)
			if err != nil {
				r.fail(c, err)
				return
			}
			bound[s.Name] = v
		}

		out, err := h(c.Request.Context(), bound)
		if err != nil {
			r.fail(c, err)
			return
		}

		status := http.StatusOK
		if resp, ok := out.(Response); ok {
			status, out = resp.Status, resp.Body
		}
		c.JSON(status, out)
	}
}

func extract(c *gin.Context, s schema.Schema) (any, error) {
	switch s.In {
	case schema.InPath:
		return c.Param(s.Name), nil
	case schema.InBody:
		if c.Request.Body == nil {
			return nil, nil
		}
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			return nil, nil
		}
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &schema.ValidationError{Field: s.Name, Constraint: "type", Message: "must be valid JSON"}
		}
		return raw, nil
	}
	return nil, errors.New("api: unknown parameter source")
}

func (r *Router) fail(c *gin.Context, err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:      verr.Error(),
			Field:      verr.Field,
			Constraint: verr.Constraint,
		})
		return
	}

	traceID := middleware.GetTraceID(c.Request.Context())
	var serr *store.Error
	if errors.As(err, &serr) {
		r.logger.Error("Store operation failed",
			zap.String("trace_id", traceID),
			zap.String("op", serr.Op),
			zap.String("collection", serr.Collection),
			zap.Error(err))
	} else {
		r.logger.Error("Handler failed", zap.String("trace_id", traceID), zap.Error(err))
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: internalError})
}

func (r *Router) recover(c *gin.Context, recovered any) {
	r.logger.Error("Recovered from panic",
		zap.String("trace_id", middleware.GetTraceID(c.Request.Context())),
		zap.String("path", c.Request.URL.Path),
		zap.Any("panic", recovered))
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: internalError})
}
