package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

// GuideHandler exposes guide generation, revision and lookup.
type GuideHandler struct {
	service ports.GuideService
}

func NewGuideHandler(service ports.GuideService) *GuideHandler {
	return &GuideHandler{service: service}
}

// --- Request types ---

type tripRequest struct {
	Destination string  `json:"destination" validate:"required"`
	Origin      string  `json:"origin"`
	StartDate   string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	Budget      float64 `json:"budget" validate:"gte=0"`
	Preferences string  `json:"preferences"`
}

func (r tripRequest) toDomain() domain.TripRequest {
	return domain.TripRequest{
		Destination: r.Destination,
		Origin:      r.Origin,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Budget:      r.Budget,
		Preferences: r.Preferences,
	}
}

type generateRequest struct {
	tripRequest
	IncludeBooking bool `json:"include_booking"`
}

type optimizeRequest struct {
	Suggestion string `json:"suggestion" validate:"required"`
	Content    string `json:"content"`
}

type pitfallRequest struct {
	Destination string `json:"destination" validate:"required"`
	Preferences string `json:"preferences"`
}

// Generate handles POST /v1/guides.
//
// @Summary      Generate a travel guide
// @Tags         guides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      generateRequest  true  "Trip parameters"
// @Success      200   {object}  domain.GuideResult
// @Failure      400   {object}  map[string]any
// @Failure      429   {object}  map[string]any
// @Failure      502   {object}  map[string]any
// @Router       /v1/guides [post]
func (h *GuideHandler) Generate(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req generateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Generate(c.Request().Context(), ports.GenerateInput{
		Request:        req.toDomain(),
		IncludeBooking: req.IncludeBooking,
		Username:       sess.Username,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}

// Optimize handles POST /v1/guides/:id/optimize.
//
// @Summary      Rewrite a guide following a suggestion
// @Tags         guides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Guide ID"
// @Param        body  body      optimizeRequest  true  "Suggestion and optional prior content"
// @Success      200   {object}  domain.GuideResult
// @Failure      404   {object}  map[string]any
// @Failure      502   {object}  map[string]any
// @Router       /v1/guides/{id}/optimize [post]
func (h *GuideHandler) Optimize(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req optimizeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Optimize(c.Request().Context(), ports.OptimizeInput{
		GuideID:    c.Param("id"),
		Content:    req.Content,
		Suggestion: req.Suggestion,
		Username:   sess.Username,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}

// Pitfalls handles POST /v1/guides/pitfalls.
//
// @Summary      Generate a pitfall guide
// @Tags         guides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      pitfallRequest  true  "Destination"
// @Success      200   {object}  domain.GuideResult
// @Router       /v1/guides/pitfalls [post]
func (h *GuideHandler) Pitfalls(c echo.Context) error {
	var req pitfallRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.service.Pitfalls(c.Request().Context(), req.Destination, req.Preferences)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res)
}

// Get handles GET /v1/guides/:id.
//
// @Summary      Get a guide
// @Tags         guides
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Guide ID"
// @Success      200  {object}  domain.TripGuide
// @Failure      404  {object}  map[string]any
// @Router       /v1/guides/{id} [get]
func (h *GuideHandler) Get(c echo.Context) error {
	guide, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, guide)
}

// List handles GET /v1/guides.
//
// @Summary      Recent guides, newest first
// @Tags         guides
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max items (1-100)"  default(10)
// @Success      200    {array}   domain.TripGuide
// @Router       /v1/guides [get]
func (h *GuideHandler) List(c echo.Context) error {
	guides, err := h.service.ListRecent(c.Request().Context(), queryInt(c, "limit", 10))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, guides)
}

// Requests handles GET /v1/requests.
//
// @Summary      Recent trip requests, newest first
// @Tags         guides
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max items (1-100)"  default(10)
// @Success      200    {array}   domain.TripRequest
// @Router       /v1/requests [get]
func (h *GuideHandler) Requests(c echo.Context) error {
	reqs, err := h.service.ListRequests(c.Request().Context(), queryInt(c, "limit", 10))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, reqs)
}
