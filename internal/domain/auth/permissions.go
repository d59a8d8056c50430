package auth

const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

const (
	PermDocumentsRead   = "documents.read"
	PermMemberFormWrite = "memberform.write"
	PermJobsRun         = "jobs.run"
	PermReferencesWrite = "references.write"
	PermMetricsRead     = "metrics.read"
	PermAuditRead       = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleViewer: {
		PermDocumentsRead,
	},
	RoleOperator: {
		PermDocumentsRead,
		PermMemberFormWrite,
		PermJobsRun,
		PermReferencesWrite,
	},
	RoleAdmin: {
		PermDocumentsRead,
		PermMemberFormWrite,
		PermJobsRun,
		PermReferencesWrite,
		PermMetricsRead,
		PermAuditRead,
	},
}

// Allowed reports whether role grants permission. Tokens without a role are
// treated as operators, matching accounts issued before roles existed.
func Allowed(role, permission string) bool {
	if role == "" {
		role = RoleOperator
	}
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
