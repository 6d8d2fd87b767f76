package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

// TravelHandler serves the standalone enrichment endpoints: weather,
// routes, booking guidance and preference extraction.
type TravelHandler struct {
	weather     ports.WeatherService
	traffic     ports.TrafficService
	booking     ports.BookingService
	preferences ports.PreferenceService
}

func NewTravelHandler(
	weather ports.WeatherService,
	traffic ports.TrafficService,
	booking ports.BookingService,
	preferences ports.PreferenceService,
) *TravelHandler {
	return &TravelHandler{weather: weather, traffic: traffic, booking: booking, preferences: preferences}
}

type bookingResponse struct {
	Info     *domain.BookingInfo `json:"info"`
	Markdown string              `json:"markdown"`
}

type extractRequest struct {
	Text   string              `json:"text" validate:"required"`
	UseLLM bool                `json:"use_llm"`
	Saved  *domain.Preferences `json:"saved,omitempty"`
}

type extractResponse struct {
	Preferences   domain.Preferences `json:"preferences"`
	Text          string             `json:"text"`
	PromptSection string             `json:"prompt_section"`
}

// Weather handles GET /v1/weather/:city.
//
// @Summary      Current weather and forecast with clothing advice
// @Tags         travel
// @Produce      json
// @Security     BearerAuth
// @Param        city  path      string  true   "City name"
// @Param        days  query     int     false  "Forecast days"  default(3)
// @Success      200   {object}  ports.CityWeather
// @Failure      404   {object}  map[string]any
// @Router       /v1/weather/{city} [get]
func (h *TravelHandler) Weather(c echo.Context) error {
	out, err := h.weather.City(c.Request().Context(), c.Param("city"), queryInt(c, "days", 0))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

// Route handles GET /v1/routes.
//
// @Summary      Travel suggestions and traffic between two places
// @Tags         travel
// @Produce      json
// @Security     BearerAuth
// @Param        origin       query     string  true  "Origin"
// @Param        destination  query     string  true  "Destination"
// @Success      200          {object}  ports.RouteOverview
// @Failure      400          {object}  map[string]any
// @Router       /v1/routes [get]
func (h *TravelHandler) Route(c echo.Context) error {
	origin, destination := c.QueryParam("origin"), c.QueryParam("destination")
	if origin == "" || destination == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "origin and destination are required")
	}
	return respond(c, http.StatusOK, h.traffic.Overview(c.Request().Context(), origin, destination))
}

// Booking handles POST /v1/bookings.
//
// @Summary      Flight, train and hotel booking guidance
// @Tags         travel
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      tripRequest  true  "Trip parameters"
// @Success      200   {object}  bookingResponse
// @Router       /v1/bookings [post]
func (h *TravelHandler) Booking(c echo.Context) error {
	var req tripRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	trip := req.toDomain()
	if err := trip.Validate(); err != nil {
		return err
	}

	info := h.booking.Info(c.Request().Context(), trip)
	return respond(c, http.StatusOK, bookingResponse{Info: info, Markdown: h.booking.Markdown(info)})
}

// ExtractPreferences handles POST /v1/preferences/extract. Saved
// preferences, when given, are merged under the extracted ones.
//
// @Summary      Extract structured preferences from free text
// @Tags         travel
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      extractRequest  true  "Free text"
// @Success      200   {object}  extractResponse
// @Router       /v1/preferences/extract [post]
func (h *TravelHandler) ExtractPreferences(c echo.Context) error {
	var req extractRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	prefs, err := h.preferences.Extract(c.Request().Context(), req.Text, req.UseLLM)
	if err != nil {
		return err
	}
	if req.Saved != nil {
		prefs = req.Saved.Merge(prefs)
	}
	return respond(c, http.StatusOK, extractResponse{
		Preferences:   prefs,
		Text:          prefs.Text(),
		PromptSection: prefs.PromptSection(),
	})
}
