package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/application-fsm/internal/application/service"
	"github.com/garyjia/application-fsm/internal/domain/application"
	"github.com/garyjia/application-fsm/internal/domain/entity"
	"github.com/garyjia/application-fsm/internal/domain/fsm"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	applicationService service.ApplicationService
	health             HealthFunc
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(applicationService service.ApplicationService, health HealthFunc, logger Logger) *Handlers {
	return &Handlers{
		applicationService: applicationService,
		health:             health,
		logger:             logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

// ApplicationResponse represents an application in API responses
type ApplicationResponse struct {
	ID               int64   `json:"id"`
	UUID             string  `json:"uuid"`
	Name             string  `json:"name"`
	OrganizationUnit string  `json:"organization_unit"`
	Amount           *string `json:"amount"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// CreateApplicationRequest is the body of POST /api/v1/applications
type CreateApplicationRequest struct {
	Name             string              `json:"name" binding:"required"`
	OrganizationUnit string              `json:"organization_unit"`
	Amount           decimal.NullDecimal `json:"amount"`
}

// SendEventRequest is the body of POST /api/v1/applications/:id/events
type SendEventRequest struct {
	Event string `json:"event" binding:"required"`
}

// ListApplicationsRequest represents query parameters for listing applications
type ListApplicationsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database:  "ok",
	}

	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			response.Database = err.Error()
			c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    response,
				Error:   "database unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ListApplications handles GET /api/v1/applications
func (h *Handlers) ListApplications(c *gin.Context) {
	var req ListApplicationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	apps, err := h.applicationService.ListApplications(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list applications", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve applications",
		})
		return
	}

	responses := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, toApplicationResponse(app))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    responses,
	})
}

// CreateApplication handles POST /api/v1/applications
func (h *Handlers) CreateApplication(c *gin.Context) {
	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid create request", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	app, err := h.applicationService.CreateApplication(c.Request.Context(), service.CreateApplicationInput{
		Name:             req.Name,
		OrganizationUnit: req.OrganizationUnit,
		Amount:           req.Amount,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toApplicationResponse(app),
	})
}

// GetApplication handles GET /api/v1/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	app, err := h.applicationService.GetApplication(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toApplicationResponse(app),
	})
}

// SendEvent handles POST /api/v1/applications/:id/events
func (h *Handlers) SendEvent(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req SendEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid event request", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	event, err := application.ParseEvent(req.Event)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	app, err := h.applicationService.SendEventByID(c.Request.Context(), id, event)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toApplicationResponse(app),
	})
}

// GetHistory handles GET /api/v1/applications/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	records, err := h.applicationService.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if records == nil {
		records = []*entity.StatusHistory{}
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

func (h *Handlers) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Error("Invalid application ID", "id", idStr, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid application ID",
		})
		return 0, false
	}
	return id, true
}

// writeError maps service errors to status codes.
// Rejected events are 409; storage and action failures are 500.
func (h *Handlers) writeError(c *gin.Context, err error) {
	if te, ok := fsm.AsTransitionError(err); ok {
		status := http.StatusConflict
		if te.Kind == fsm.KindPersistence || te.Kind == fsm.KindActionFailed {
			status = http.StatusInternalServerError
			h.logger.Error("Transition failed", "kind", string(te.Kind), "error", te.Err)
		}
		c.JSON(status, Response{
			Success: false,
			Error:   te.Error(),
			Kind:    string(te.Kind),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "application not found",
		})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
	default:
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "internal server error",
		})
	}
}

func toApplicationResponse(app *application.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:               app.ID,
		UUID:             app.UUID.String(),
		Name:             app.Name,
		OrganizationUnit: app.OrganizationUnit,
		Status:           app.Status().String(),
		CreatedAt:        app.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        app.UpdatedAt.Format(time.RFC3339),
	}

	if app.Amount.Valid {
		amount := app.Amount.Decimal.String()
		resp.Amount = &amount
	}

	return resp
}
