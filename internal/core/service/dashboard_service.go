package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

const recentUserWindow = 7 * 24 * time.Hour

type dashboardService struct {
	users ports.UserRepository
	roles ports.RoleRepository
	menus ports.MenuRepository
	perms ports.PermissionRepository
	audit ports.AuditRepository
}

// NewDashboardService returns a DashboardService aggregating over all entity
// repositories.
func NewDashboardService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	menus ports.MenuRepository,
	perms ports.PermissionRepository,
	audit ports.AuditRepository,
) ports.DashboardService {
	return &dashboardService{users: users, roles: roles, menus: menus, perms: perms, audit: audit}
}

// Stats fetches the entity counts in parallel; they are independent reads.
func (s *dashboardService) Stats(ctx context.Context) (*ports.DashboardStats, error) {
	var userCount, roleCount, menuCount, permCount, recentUsers int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { userCount, err = s.users.Count(gctx); return })
	g.Go(func() (err error) { roleCount, err = s.roles.Count(gctx); return })
	g.Go(func() (err error) { menuCount, err = s.menus.Count(gctx); return })
	g.Go(func() (err error) { permCount, err = s.perms.Count(gctx); return })
	g.Go(func() (err error) {
		recentUsers, err = s.users.CountCreatedSince(gctx, time.Now().UTC().Add(-recentUserWindow))
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	userChange := ""
	if userCount > 0 {
		userChange = fmt.Sprintf("+%d%%", recentUsers*100/userCount)
	}

	return &ports.DashboardStats{
		Users:       ports.EntityCount{Total: userCount, Change: userChange},
		Roles:       ports.EntityCount{Total: roleCount},
		Menus:       ports.EntityCount{Total: menuCount},
		Permissions: ports.EntityCount{Total: permCount},
	}, nil
}

func (s *dashboardService) RecentActivity(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.audit.Recent(ctx, limit)
}
