package domain

import "time"

// Menu is a navigation entry. ParentID is a self-reference forming a forest;
// siblings are ordered by Order ascending. Parent references from imported
// data are not trusted to be acyclic — tree construction guards walks with
// visited sets.
type Menu struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	Icon          string    `json:"icon"`
	Order         int       `json:"order"`
	ParentID      string    `json:"parent_id,omitempty"`
	PermissionIDs []string  `json:"permissions"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MenuNode is a menu with its resolved children, as served to clients.
type MenuNode struct {
	Menu
	Children []*MenuNode `json:"children"`
}
