package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsboard/admin-system/internal/api/middleware"
	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// RoleHandler handles role management and the API keys embedded in roles.
type RoleHandler struct {
	roles ports.RoleService
	keys  ports.APIKeyService
}

func NewRoleHandler(roles ports.RoleService, keys ports.APIKeyService) *RoleHandler {
	return &RoleHandler{roles: roles, keys: keys}
}

type roleRequest struct {
	Name          string   `json:"name" validate:"required,min=2,max=64"`
	Code          string   `json:"code" validate:"required,min=2,max=64"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permission_ids"`
	MenuIDs       []string `json:"menu_ids"`
}

type listRolesResponse struct {
	Data       []domain.Role      `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type generateAPIKeyRequest struct {
	Remark string `json:"remark"`
}

type toggleAPIKeyRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// Create adds a new role.
//
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      roleRequest  true  "New role"
// @Success      201   {object}  domain.Role
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.roles.Create(c.Request().Context(), ports.RoleInput{
		Name:          req.Name,
		Code:          req.Code,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
		MenuIDs:       req.MenuIDs,
	})
	if err != nil {
		return err
	}

	c.Set(middleware.CtxResourceID, role.ID)
	return c.JSON(http.StatusCreated, role)
}

// Get returns a single role by id.
//
// @Summary      Get role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  domain.Role
// @Failure      404  {object}  errorResponse
// @Router       /api/roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.roles.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// List returns a paginated role collection.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  listRolesResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	page := pageFromQuery(c).Normalize("created_at")

	roles, total, err := h.roles.List(c.Request().Context(), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listRolesResponse{
		Data:       roles,
		Pagination: newPagination(total, page),
	})
}

// Update replaces the writable fields of a role.
//
// @Summary      Update role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Role id"
// @Param        body  body      roleRequest  true  "Fields to change"
// @Success      200   {object}  domain.Role
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/roles/{id} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.roles.Update(c.Request().Context(), c.Param("id"), ports.RoleInput{
		Name:          req.Name,
		Code:          req.Code,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
		MenuIDs:       req.MenuIDs,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, role)
}

// Delete removes a role. Built-in system roles are protected.
//
// @Summary      Delete role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/roles/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.roles.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "role deleted"})
}

// GenerateAPIKey mints a machine credential for a role. The plaintext secret
// is returned once and never stored.
//
// @Summary      Generate API key
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true   "Role id"
// @Param        body  body      generateAPIKeyRequest  false  "Optional remark"
// @Success      201   {object}  ports.GeneratedAPIKey
// @Failure      404   {object}  errorResponse
// @Router       /api/roles/{id}/api-keys [post]
func (h *RoleHandler) GenerateAPIKey(c echo.Context) error {
	var req generateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	generated, err := h.keys.Generate(c.Request().Context(), c.Param("id"), req.Remark)
	if err != nil {
		return err
	}

	c.Set(middleware.CtxResourceID, generated.Key)
	return c.JSON(http.StatusCreated, generated)
}

// ListAPIKeys returns a role's API keys without their secret hashes.
//
// @Summary      List API keys
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {array}   domain.APIKey
// @Failure      404  {object}  errorResponse
// @Router       /api/roles/{id}/api-keys [get]
func (h *RoleHandler) ListAPIKeys(c echo.Context) error {
	keys, err := h.keys.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, keys)
}

// ToggleAPIKey enables or disables a key without destroying it.
//
// @Summary      Toggle API key
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Role id"
// @Param        key   path      string               true  "API key"
// @Param        body  body      toggleAPIKeyRequest  true  "Desired state"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  errorResponse
// @Router       /api/roles/{id}/api-keys/{key} [patch]
func (h *RoleHandler) ToggleAPIKey(c echo.Context) error {
	var req toggleAPIKeyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.keys.Toggle(c.Request().Context(), c.Param("id"), c.Param("key"), *req.IsActive); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "api key updated"})
}

// RevokeAPIKey permanently removes a key from a role.
//
// @Summary      Revoke API key
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Param        key  path      string  true  "API key"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  errorResponse
// @Router       /api/roles/{id}/api-keys/{key} [delete]
func (h *RoleHandler) RevokeAPIKey(c echo.Context) error {
	removed, err := h.keys.Revoke(c.Request().Context(), c.Param("id"), c.Param("key"))
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrAPIKeyNotFound
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "api key revoked"})
}
