package reporting

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/immunitrack/immunitrack/internal/platform/auth"
)

// MeasureDefinition defines an operational measure with its SQL query.
type MeasureDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SQL         string   `json:"sql"`
	Parameters  []string `json:"parameters"`
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []map[string]interface{} `json:"results"`
	Parameters  map[string]string        `json:"parameters,omitempty"`
}

// PredefinedMeasures is the list of available operational measures. Program
// indicators (compliance, defaulters, dropout) live in the reports domain;
// these cover day-to-day operational counts.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "children-per-facility",
		Name:        "Children per Facility",
		Description: "Number of registered children grouped by facility",
		SQL:         `SELECT f.name AS facility, COUNT(c.id) AS total FROM facility f LEFT JOIN child c ON c.facility_id = f.id GROUP BY f.name ORDER BY total DESC`,
		Parameters:  []string{},
	},
	{
		ID:          "vaccinations-by-status",
		Name:        "Vaccinations by Status",
		Description: "Count of vaccination records grouped by status",
		SQL:         `SELECT status, COUNT(*) AS total FROM vaccination GROUP BY status ORDER BY total DESC`,
		Parameters:  []string{},
	},
	{
		ID:          "schedule-backlog",
		Name:        "Schedule Backlog",
		Description: "Scheduled doses whose date has already passed, by facility",
		SQL:         `SELECT f.name AS facility, COUNT(*) AS overdue FROM vaccination v JOIN child c ON c.id = v.child_id JOIN facility f ON f.id = c.facility_id WHERE v.status = 'scheduled' AND v.scheduled_date < CURRENT_DATE GROUP BY f.name ORDER BY overdue DESC`,
		Parameters:  []string{},
	},
	{
		ID:          "registrations-last-30-days",
		Name:        "Registrations in the Last 30 Days",
		Description: "Daily child registration counts over the past 30 days",
		SQL:         `SELECT created_at::date AS day, COUNT(*) AS total FROM child WHERE created_at >= CURRENT_DATE - INTERVAL '30 days' GROUP BY day ORDER BY day`,
		Parameters:  []string{},
	},
}

// Handler provides HTTP handlers for the operational measures API.
type Handler struct {
	pool *pgxpool.Pool
}

// NewHandler creates a new reporting handler.
func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool}
}

// RegisterRoutes registers the measures API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	measureGroup := api.Group("/measures", auth.RequireRole(auth.RoleAdmin, auth.RoleReporting))
	measureGroup.GET("", h.ListMeasures)
	measureGroup.GET("/:id/evaluate", h.EvaluateMeasure)
}

// ListMeasures returns all available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedMeasures)
}

// EvaluateMeasure executes a measure's SQL and returns the results.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	measure := FindMeasure(c.Param("id"))
	if measure == nil {
		return echo.NewHTTPError(http.StatusNotFound, "measure not found")
	}

	params := map[string]string{}
	for _, p := range measure.Parameters {
		if v := c.QueryParam(p); v != "" {
			params[p] = v
		}
	}

	results, err := h.executeSQL(c.Request().Context(), measure.SQL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
	}

	report := MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now(),
		Results:     results,
		Parameters:  params,
	}

	return c.JSON(http.StatusOK, report)
}

// executeSQL runs a SQL query and returns results as a slice of maps.
func (h *Handler) executeSQL(ctx context.Context, sql string) ([]map[string]interface{}, error) {
	rows, err := h.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	var results []map[string]interface{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(fieldDescs))
		for i, fd := range fieldDescs {
			row[string(fd.Name)] = values[i]
		}
		results = append(results, row)
	}

	if results == nil {
		results = []map[string]interface{}{}
	}

	return results, nil
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}
