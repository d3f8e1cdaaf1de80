package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsboard/admin-system/internal/api/middleware"
	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// MenuHandler handles menu management and hierarchical menu views.
type MenuHandler struct {
	menus ports.MenuService
}

func NewMenuHandler(menus ports.MenuService) *MenuHandler {
	return &MenuHandler{menus: menus}
}

type menuRequest struct {
	Name          string   `json:"name" validate:"required,min=2,max=64"`
	Path          string   `json:"path" validate:"required"`
	Icon          string   `json:"icon"`
	Order         int      `json:"order"`
	ParentID      string   `json:"parent_id"`
	PermissionIDs []string `json:"permission_ids"`
	IsActive      *bool    `json:"is_active"`
}

type listMenusResponse struct {
	Data       []domain.Menu      `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// Create adds a new menu entry.
//
// @Summary      Create menu
// @Tags         menus
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      menuRequest  true  "New menu"
// @Success      201   {object}  domain.Menu
// @Failure      400   {object}  errorResponse
// @Router       /api/menus [post]
func (h *MenuHandler) Create(c echo.Context) error {
	var req menuRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	menu, err := h.menus.Create(c.Request().Context(), ports.MenuInput{
		Name:          req.Name,
		Path:          req.Path,
		Icon:          req.Icon,
		Order:         req.Order,
		ParentID:      req.ParentID,
		PermissionIDs: req.PermissionIDs,
		IsActive:      req.IsActive,
	})
	if err != nil {
		return err
	}

	c.Set(middleware.CtxResourceID, menu.ID)
	return c.JSON(http.StatusCreated, menu)
}

// Get returns a single menu by id.
//
// @Summary      Get menu
// @Tags         menus
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Menu id"
// @Success      200  {object}  domain.Menu
// @Failure      404  {object}  errorResponse
// @Router       /api/menus/{id} [get]
func (h *MenuHandler) Get(c echo.Context) error {
	menu, err := h.menus.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, menu)
}

// List returns a paginated flat menu collection.
//
// @Summary      List menus
// @Tags         menus
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  listMenusResponse
// @Router       /api/menus [get]
func (h *MenuHandler) List(c echo.Context) error {
	page := pageFromQuery(c).Normalize("order")

	menus, total, err := h.menus.List(c.Request().Context(), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listMenusResponse{
		Data:       menus,
		Pagination: newPagination(total, page),
	})
}

// Update replaces the writable fields of a menu.
//
// @Summary      Update menu
// @Tags         menus
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Menu id"
// @Param        body  body      menuRequest  true  "Fields to change"
// @Success      200   {object}  domain.Menu
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/menus/{id} [put]
func (h *MenuHandler) Update(c echo.Context) error {
	var req menuRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	menu, err := h.menus.Update(c.Request().Context(), c.Param("id"), ports.MenuInput{
		Name:          req.Name,
		Path:          req.Path,
		Icon:          req.Icon,
		Order:         req.Order,
		ParentID:      req.ParentID,
		PermissionIDs: req.PermissionIDs,
		IsActive:      req.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, menu)
}

// Delete removes a menu together with all of its descendants.
//
// @Summary      Delete menu
// @Tags         menus
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Menu id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  errorResponse
// @Router       /api/menus/{id} [delete]
func (h *MenuHandler) Delete(c echo.Context) error {
	if err := h.menus.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "menu deleted"})
}

type syncMenuItem struct {
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	Icon          string   `json:"icon"`
	Order         int      `json:"order"`
	ParentID      string   `json:"parent_id"`
	PermissionIDs []string `json:"permission_ids"`
	IsActive      *bool    `json:"is_active"`
}

// Sync bulk-upserts a declarative menu list keyed by path and returns the
// refreshed tree. Items without a path are skipped.
//
// @Summary      Sync menus
// @Tags         menus
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []syncMenuItem  true  "Menus to upsert"
// @Success      200   {array}   domain.MenuNode
// @Failure      400   {object}  errorResponse
// @Router       /api/menus/sync [post]
func (h *MenuHandler) Sync(c echo.Context) error {
	var items []syncMenuItem
	if err := c.Bind(&items); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	inputs := make([]ports.MenuInput, len(items))
	for i, item := range items {
		inputs[i] = ports.MenuInput{
			Name:          item.Name,
			Path:          item.Path,
			Icon:          item.Icon,
			Order:         item.Order,
			ParentID:      item.ParentID,
			PermissionIDs: item.PermissionIDs,
			IsActive:      item.IsActive,
		}
	}

	tree, err := h.menus.Sync(c.Request().Context(), inputs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tree)
}

// Tree returns the full menu hierarchy for management UIs.
//
// @Summary      Full menu tree
// @Tags         menus
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.MenuNode
// @Router       /api/menus/tree [get]
func (h *MenuHandler) Tree(c echo.Context) error {
	tree, err := h.menus.Tree(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tree)
}

// UserTree returns the menu hierarchy visible to the calling principal.
//
// @Summary      Menu tree for the current user
// @Tags         menus
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.MenuNode
// @Failure      401  {object}  errorResponse
// @Router       /api/menus/user/tree [get]
func (h *MenuHandler) UserTree(c echo.Context) error {
	user := middleware.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	tree, err := h.menus.TreeForRole(c.Request().Context(), user.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tree)
}
