package domain

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

type Admin struct {
	ID             string `db:"id"`
	Username       string `db:"username"`
	Hash           string `db:"password_hash"`
	Role           string `db:"role"`
	WhatsAppNumber string `db:"whatsapp_number"`
	LastLogin      string `db:"last_login"`
}

// IsAdmin reports whether role may use admin-only endpoints.
func IsAdmin(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
