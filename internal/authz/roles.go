package authz

import "tasktracker/internal/models"

const (
	RoleUser  = 10
	RoleAdmin = 50
)

// RoleFor maps a stored user onto the role carried in access tokens.
func RoleFor(u *models.User) int {
	if u != nil && u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func IsAdmin(roleID int) bool {
	return roleID == RoleAdmin
}

// CanManageTask reports whether the caller may edit or re-status a task.
func CanManageTask(userID int64, roleID int, t *models.Task) bool {
	if IsAdmin(roleID) {
		return true
	}
	return t.CreatorID == userID || t.AssigneeID == userID
}

// CanManageProject reports whether the caller may edit a project or book costs on it.
func CanManageProject(userID int64, roleID int, p *models.Project) bool {
	return IsAdmin(roleID) || p.OwnerID == userID
}
