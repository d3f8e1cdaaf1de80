package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// AuditLogHandler exposes the recorded operation logs.
type AuditLogHandler struct {
	logs ports.AuditRepository
}

func NewAuditLogHandler(logs ports.AuditRepository) *AuditLogHandler {
	return &AuditLogHandler{logs: logs}
}

type listAuditLogsResponse struct {
	Data       []domain.AuditEvent `json:"data"`
	Pagination paginationResponse  `json:"pagination"`
}

// List returns operation logs, newest first.
//
// @Summary      List operation logs
// @Tags         logs
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  listAuditLogsResponse
// @Router       /api/logs [get]
func (h *AuditLogHandler) List(c echo.Context) error {
	page := pageFromQuery(c).Normalize("created_at")

	events, total, err := h.logs.List(c.Request().Context(), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listAuditLogsResponse{
		Data:       events,
		Pagination: newPagination(total, page),
	})
}
