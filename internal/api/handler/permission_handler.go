package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsboard/admin-system/internal/api/middleware"
	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// PermissionHandler handles permission management routes.
type PermissionHandler struct {
	perms ports.PermissionService
}

func NewPermissionHandler(perms ports.PermissionService) *PermissionHandler {
	return &PermissionHandler{perms: perms}
}

type permissionRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Code        string `json:"code" validate:"required,min=3,max=64"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"omitempty,oneof=menu button action"`
	Module      string `json:"module"`
}

type listPermissionsResponse struct {
	Data       []domain.Permission `json:"data"`
	Pagination paginationResponse  `json:"pagination"`
}

// Create adds a new permission.
//
// @Summary      Create permission
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      permissionRequest  true  "New permission"
// @Success      201   {object}  domain.Permission
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/permissions [post]
func (h *PermissionHandler) Create(c echo.Context) error {
	var req permissionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	perm, err := h.perms.Create(c.Request().Context(), ports.PermissionInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Type:        req.Type,
		Module:      req.Module,
	})
	if err != nil {
		return err
	}

	c.Set(middleware.CtxResourceID, perm.ID)
	return c.JSON(http.StatusCreated, perm)
}

// Get returns a single permission by id.
//
// @Summary      Get permission
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Permission id"
// @Success      200  {object}  domain.Permission
// @Failure      404  {object}  errorResponse
// @Router       /api/permissions/{id} [get]
func (h *PermissionHandler) Get(c echo.Context) error {
	perm, err := h.perms.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perm)
}

// List returns a paginated permission collection.
//
// @Summary      List permissions
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  listPermissionsResponse
// @Router       /api/permissions [get]
func (h *PermissionHandler) List(c echo.Context) error {
	page := pageFromQuery(c).Normalize("code")

	perms, total, err := h.perms.List(c.Request().Context(), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listPermissionsResponse{
		Data:       perms,
		Pagination: newPagination(total, page),
	})
}

// Update replaces the writable fields of a permission.
//
// @Summary      Update permission
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Permission id"
// @Param        body  body      permissionRequest  true  "Fields to change"
// @Success      200   {object}  domain.Permission
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/permissions/{id} [put]
func (h *PermissionHandler) Update(c echo.Context) error {
	var req permissionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	perm, err := h.perms.Update(c.Request().Context(), c.Param("id"), ports.PermissionInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Type:        req.Type,
		Module:      req.Module,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, perm)
}

// Delete removes a permission.
//
// @Summary      Delete permission
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Permission id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  errorResponse
// @Router       /api/permissions/{id} [delete]
func (h *PermissionHandler) Delete(c echo.Context) error {
	if err := h.perms.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "permission deleted"})
}

// Tree returns all permissions grouped by module for assignment UIs.
//
// @Summary      Permission tree
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ports.PermissionModuleNode
// @Router       /api/permissions/tree [get]
func (h *PermissionHandler) Tree(c echo.Context) error {
	tree, err := h.perms.Tree(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tree)
}
