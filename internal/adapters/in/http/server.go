// Package http is the echo REST adapter over the workflow commands and the
// read-model queries. Callers identify themselves with the X-Actor-ID header;
// authentication happens upstream.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"

	"github.com/labstack/echo/v4"
)

// Handler is the shape shared by every command and query handler.
type Handler[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// Handlers lists the use cases the server exposes.
type Handlers struct {
	// Command handlers
	CreateLoad         Handler[commands.CreateLoadCommand, *load.Load]
	AdvanceLoadStage   Handler[commands.AdvanceLoadStageCommand, *load.Load]
	CreateAssignment   Handler[commands.CreateAssignmentCommand, *assignment.Assignment]
	AcceptAssignment   Handler[commands.AcceptAssignmentCommand, *assignment.Assignment]
	RejectAssignment   Handler[commands.RejectAssignmentCommand, *assignment.Assignment]
	CancelAssignment   Handler[commands.CancelAssignmentCommand, *assignment.Assignment]
	RegisterResource   Handler[commands.RegisterResourceCommand, *resource.Resource]
	ChangeAvailability Handler[commands.ChangeResourceAvailabilityCommand, *resource.Resource]

	// Query handlers
	GetActiveLoads        Handler[queries.GetActiveLoadsQuery, []queries.LoadSummary]
	GetLoad               Handler[queries.GetLoadQuery, queries.LoadDetails]
	GetAvailableResources Handler[queries.GetAvailableResourcesQuery, []queries.ResourceSummary]
	GetNotifications      Handler[queries.GetNotificationsQuery, []queries.NotificationView]
}

// Server coordinates between HTTP requests and application use cases.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{
		h:      handlers,
		logger: logger.With("component", "http"),
	}
}

// CreateLoad handles POST /api/v1/loads.
func (s *Server) CreateLoad(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var req CreateLoadRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cmd, err := req.toCommand(actor)
	if err != nil {
		return s.fail(c, err)
	}

	l, err := s.h.CreateLoad.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, toLoadResponse(l))
}

// GetActiveLoads handles GET /api/v1/loads?orgId=...
func (s *Server) GetActiveLoads(c echo.Context) error {
	orgID, err := queryID(c, "orgId")
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetActiveLoadsQuery(orgID)
	if err != nil {
		return s.fail(c, err)
	}

	loads, err := s.h.GetActiveLoads.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]LoadSummaryResponse, len(loads))
	for i, l := range loads {
		response[i] = toLoadSummaryResponse(l)
	}
	return c.JSON(http.StatusOK, response)
}

// GetLoad handles GET /api/v1/loads/:id.
func (s *Server) GetLoad(c echo.Context) error {
	loadID, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetLoadQuery(loadID)
	if err != nil {
		return s.fail(c, err)
	}

	details, err := s.h.GetLoad.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, toLoadDetailsResponse(details))
}

// AdvanceLoadStage handles POST /api/v1/loads/:id/stage.
func (s *Server) AdvanceLoadStage(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	loadID, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var req AdvanceStageRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	target, err := load.ParseStage(req.Stage)
	if err != nil {
		return s.fail(c, err)
	}
	var report *load.DeliveryReport
	if req.TotalDistance != nil {
		report = &load.DeliveryReport{TotalDistance: req.TotalDistance}
	}

	cmd, err := commands.NewAdvanceLoadStageCommand(loadID, target, actor, req.Note, report)
	if err != nil {
		return s.fail(c, err)
	}

	l, err := s.h.AdvanceLoadStage.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, toLoadResponse(l))
}

// CreateAssignment handles POST /api/v1/loads/:id/assignments.
func (s *Server) CreateAssignment(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}
	loadID, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var req CreateAssignmentRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	driverID, err := parseID("driverId", req.DriverID)
	if err != nil {
		return s.fail(c, err)
	}
	vehicleIDs, err := parseIDs("vehicleIds", req.VehicleIDs)
	if err != nil {
		return s.fail(c, err)
	}

	ttl, err := req.ttl()
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateAssignmentCommand(loadID, driverID, vehicleIDs, actor, ttl)
	if err != nil {
		return s.fail(c, err)
	}

	a, err := s.h.CreateAssignment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, toAssignmentResponse(a))
}

// AcceptAssignment handles POST /api/v1/assignments/:id/accept.
func (s *Server) AcceptAssignment(c echo.Context) error {
	actor, assignmentID, err := actorAndPathID(c)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAcceptAssignmentCommand(assignmentID, actor)
	if err != nil {
		return s.fail(c, err)
	}

	a, err := s.h.AcceptAssignment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, toAssignmentResponse(a))
}

// RejectAssignment handles POST /api/v1/assignments/:id/reject.
func (s *Server) RejectAssignment(c echo.Context) error {
	actor, assignmentID, err := actorAndPathID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var req RejectAssignmentRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewRejectAssignmentCommand(assignmentID, actor, req.Reason)
	if err != nil {
		return s.fail(c, err)
	}

	a, err := s.h.RejectAssignment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, toAssignmentResponse(a))
}

// CancelAssignment handles POST /api/v1/assignments/:id/cancel.
func (s *Server) CancelAssignment(c echo.Context) error {
	actor, assignmentID, err := actorAndPathID(c)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCancelAssignmentCommand(assignmentID, actor)
	if err != nil {
		return s.fail(c, err)
	}

	a, err := s.h.CancelAssignment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, toAssignmentResponse(a))
}

// RegisterResource handles POST /api/v1/resources.
func (s *Server) RegisterResource(c echo.Context) error {
	var req RegisterResourceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cmd, err := req.toCommand()
	if err != nil {
		return s.fail(c, err)
	}

	r, err := s.h.RegisterResource.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, toResourceResponse(r))
}

// ChangeAvailability handles PUT /api/v1/resources/:id/availability.
func (s *Server) ChangeAvailability(c echo.Context) error {
	resourceID, err := pathID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var req AvailabilityRequest
	if err = c.Bind(&req); err != nil || req.Available == nil {
		return badRequest(c, "Body must carry \"available\"")
	}

	cmd, err := commands.NewChangeResourceAvailabilityCommand(resourceID, *req.Available)
	if err != nil {
		return s.fail(c, err)
	}

	r, err := s.h.ChangeAvailability.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, toResourceResponse(r))
}

// GetAvailableResources handles GET /api/v1/resources/available?orgId=...&kind=...
func (s *Server) GetAvailableResources(c echo.Context) error {
	orgID, err := queryID(c, "orgId")
	if err != nil {
		return s.fail(c, err)
	}

	raw, err := queryString(c, "kind")
	if err != nil {
		return s.fail(c, err)
	}
	kind := resource.UnknownKind
	if raw != "" {
		if kind, err = resource.ParseKind(raw); err != nil {
			return s.fail(c, err)
		}
	}

	query, err := queries.NewGetAvailableResourcesQuery(orgID, kind)
	if err != nil {
		return s.fail(c, err)
	}

	resources, err := s.h.GetAvailableResources.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]ResourceSummaryResponse, len(resources))
	for i, r := range resources {
		response[i] = ResourceSummaryResponse{ID: r.ID.String(), Kind: r.Kind.String(), Name: r.Name}
	}
	return c.JSON(http.StatusOK, response)
}

// GetNotifications handles GET /api/v1/notifications for the calling actor.
func (s *Server) GetNotifications(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return s.fail(c, err)
	}

	params, err := bindNotificationsParams(c)
	if err != nil {
		return s.fail(c, err)
	}

	unreadOnly, limit := params.values()
	query, err := queries.NewGetNotificationsQuery(actor, unreadOnly, limit)
	if err != nil {
		return s.fail(c, err)
	}

	views, err := s.h.GetNotifications.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]NotificationResponse, len(views))
	for i, v := range views {
		response[i] = toNotificationResponse(v)
	}
	return c.JSON(http.StatusOK, response)
}
