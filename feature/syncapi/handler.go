package syncapi

import (
	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for catalog synchronization.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/reconcile/:scope", h.HandleReconcile)
	group.Post("/propagate/:scope", h.HandlePropagate)
	group.Get("/status/:scope", h.HandleStatus)
	group.Get("/reports/:scope", h.HandleReports)
}

// HandleReconcile runs a full reconciliation pass for a scope.
// @Summary Reconcile a scope
// @Description Fetch all asset types for the scope and reconcile them into the local store.
// @Tags sync
// @Produce json
// @Param scope path string true "Scope (site) identifier"
// @Success 200 {object} reconcile.RunReport "Run report"
// @Failure 502 {object} reconcile.RunReport "Run report with failed types"
// @Router /sync/reconcile/{scope} [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	scope := c.Params("scope")
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Reconciliation requested", zap.String("scope", scope))

	report := h.service.Reconcile(c.Context(), scope)
	status := fiber.StatusOK
	if !report.Success() {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(report)
}

// HandlePropagate runs a propagation pass for a scope.
// @Summary Propagate a scope
// @Description Export pending local state to the downstream governance catalog.
// @Tags sync
// @Produce json
// @Param scope path string true "Scope (site) identifier"
// @Param dry_run query bool false "Plan only, no downstream calls"
// @Success 200 {object} export.PropagationReport "Propagation report"
// @Failure 502 {object} export.PropagationReport "Propagation report with failures"
// @Router /sync/propagate/{scope} [post]
func (h *Handler) HandlePropagate(c *fiber.Ctx) error {
	scope := c.Params("scope")
	dryRun := c.QueryBool("dry_run", false)
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Propagation requested", zap.String("scope", scope), zap.Bool("dry_run", dryRun))

	report := h.service.Propagate(c.Context(), scope, dryRun)
	status := fiber.StatusOK
	if !report.Success {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(report)
}

// HandleStatus returns lifecycle and propagation state counts for a scope.
// @Summary Scope sync status
// @Description Counts of records per lifecycle and propagation state.
// @Tags sync
// @Produce json
// @Param scope path string true "Scope (site) identifier"
// @Success 200 {object} map[string]int64 "State counts"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/status/{scope} [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	scope := c.Params("scope")
	l := logger.WithRayID(h.service.logger, c)

	counts, err := h.service.Status(c.Context(), scope)
	if err != nil {
		l.Error("Status query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(counts)
}

// HandleReports lists archived run reports for a scope.
// @Summary List run reports
// @Description Archived reconciliation and propagation reports for the scope.
// @Tags sync
// @Produce json
// @Param scope path string true "Scope (site) identifier"
// @Success 200 {array} string "Report object names"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/reports/{scope} [get]
func (h *Handler) HandleReports(c *fiber.Ctx) error {
	scope := c.Params("scope")
	l := logger.WithRayID(h.service.logger, c)

	reports, err := h.service.Reports(c.Context(), scope)
	if err != nil {
		l.Error("Report listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if reports == nil {
		reports = []string{}
	}
	return c.JSON(reports)
}
