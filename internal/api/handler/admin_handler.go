package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type AdminHandler struct {
	authService ports.AuthService
}

func NewAdminHandler(authService ports.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

type userPage struct {
	Items    []domain.User `json:"items"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total"`
}

// Users handles GET /v1/admin/users.
//
// @Summary      List user accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number"  default(1)
// @Param        page_size  query     int  false  "Page size"    default(20)
// @Success      200        {object}  userPage
// @Failure      403        {object}  map[string]any
// @Router       /v1/admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size := queryInt(c, "page_size", defaultPageSize)
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}

	// Pages past the end are empty. Checked before multiplying so large
	// page numbers cannot overflow.
	start := len(users)
	if page <= len(users)/size+1 {
		start = min((page-1)*size, len(users))
	}
	end := min(start+size, len(users))

	return respond(c, http.StatusOK, userPage{
		Items:    users[start:end],
		Page:     page,
		PageSize: size,
		Total:    len(users),
	})
}
