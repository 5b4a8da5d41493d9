package handlers

import "net/http"

// Handlers bundles everything the router needs
type Handlers struct {
	Middleware *Middleware
	Public     *PublicHandler
	Auth       *AuthHandler
	Admin      *AdminHandler
	Roster     *RosterHandler
	Trainers   *TrainerHandler
	Attendance *AttendanceHandler
	Dues       *ContributionHandler
}

// NewRouter registers every route and wraps the mux with request logging
func NewRouter(h Handlers) http.Handler {
	mw := h.Middleware
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", h.Public.Health)
	mux.HandleFunc("GET /api/sports", h.Public.ListSports)
	mux.HandleFunc("GET /api/groups", h.Public.ListGroups)
	mux.HandleFunc("GET /api/groups/{id}/options", h.Public.ListGroupOptions)
	mux.HandleFunc("POST /api/registrations", mw.RateLimit(h.Public.Register))

	// Auth routes
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/token", mw.RateLimit(h.Auth.Token))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", mw.RequireAuth(h.Auth.Me))
	mux.HandleFunc("GET /auth/{provider}/start", h.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", h.Auth.OAuthCallback)

	// Staff routes
	mux.HandleFunc("GET /api/trainer/groups", mw.RequireAuth(h.Trainers.MyGroups))
	mux.HandleFunc("GET /api/groups/{id}/sessions", mw.RequireAuth(h.Attendance.ListSessions))
	mux.HandleFunc("GET /api/sessions/{id}/attendance", mw.RequireAuth(h.Attendance.SessionRoster))
	mux.HandleFunc("POST /api/sessions/{id}/attendance/{childId}/toggle", mw.RequireAuth(h.Attendance.ToggleAttendance))
	mux.HandleFunc("PUT /api/sessions/{id}/attendance/{childId}", mw.RequireAuth(h.Attendance.SetAttendance))
	mux.HandleFunc("GET /api/groups/{id}/attendance", mw.RequireAuth(h.Attendance.GroupSummary))
	mux.HandleFunc("GET /api/groups/{id}/children/{childId}/attendance", mw.RequireAuth(h.Attendance.ChildSummary))
	mux.HandleFunc("GET /api/sessions/{id}/trainers", mw.RequireAuth(h.Attendance.SessionTrainers))
	mux.HandleFunc("POST /api/sessions/{id}/trainers/{trainerId}/toggle", mw.RequireAuth(h.Attendance.ToggleTrainerAttendance))
	mux.HandleFunc("GET /api/groups/{id}/trainers/{trainerId}/attendance", mw.RequireAuth(h.Attendance.TrainerSummary))

	// Admin routes
	mux.HandleFunc("POST /api/admin/sports", mw.RequireAdmin(h.Admin.CreateSport))
	mux.HandleFunc("DELETE /api/admin/sports/{id}", mw.RequireAdmin(h.Admin.DeleteSport))

	mux.HandleFunc("GET /api/admin/groups", mw.RequireAdmin(h.Admin.ListGroups))
	mux.HandleFunc("POST /api/admin/groups", mw.RequireAdmin(h.Admin.CreateGroup))
	mux.HandleFunc("GET /api/admin/groups/{id}", mw.RequireAdmin(h.Admin.GetGroup))
	mux.HandleFunc("PUT /api/admin/groups/{id}", mw.RequireAdmin(h.Admin.UpdateGroup))
	mux.HandleFunc("DELETE /api/admin/groups/{id}", mw.RequireAdmin(h.Admin.DeleteGroup))
	mux.HandleFunc("POST /api/admin/groups/{id}/archive", mw.RequireAdmin(h.Admin.ArchiveGroup))
	mux.HandleFunc("POST /api/admin/groups/{id}/options", mw.RequireAdmin(h.Admin.CreateOption))
	mux.HandleFunc("PUT /api/admin/options/{id}", mw.RequireAdmin(h.Admin.UpdateOption))
	mux.HandleFunc("DELETE /api/admin/options/{id}", mw.RequireAdmin(h.Admin.DeleteOption))

	mux.HandleFunc("GET /api/admin/groups/{id}/children", mw.RequireAdmin(h.Roster.ListGroupChildren))
	mux.HandleFunc("POST /api/admin/groups/{id}/sessions/generate", mw.RequireAdmin(h.Admin.GenerateSessions))
	mux.HandleFunc("POST /api/admin/sessions/{id}/cancel", mw.RequireAdmin(h.Admin.CancelSession))
	mux.HandleFunc("POST /api/admin/sessions/{id}/restore", mw.RequireAdmin(h.Admin.RestoreSession))

	mux.HandleFunc("DELETE /api/admin/memberships/{id}", mw.RequireAdmin(h.Roster.RemoveMembership))
	mux.HandleFunc("POST /api/admin/memberships/{id}/deactivate", mw.RequireAdmin(h.Roster.DeactivateMembership))
	mux.HandleFunc("PUT /api/admin/memberships/{id}/option", mw.RequireAdmin(h.Roster.ChangeMembershipOption))
	mux.HandleFunc("POST /api/admin/memberships/{id}/move", mw.RequireAdmin(h.Roster.MoveMembership))
	mux.HandleFunc("PUT /api/admin/memberships/{id}/billing-start", mw.RequireAdmin(h.Dues.SetBillingStart))

	mux.HandleFunc("GET /api/admin/contributions", mw.RequireAdmin(h.Dues.ListContributions))
	mux.HandleFunc("GET /api/admin/contributions/export", mw.RequireAdmin(h.Dues.ExportContributions))
	mux.HandleFunc("GET /api/admin/payments", mw.RequireAdmin(h.Dues.ListPayments))
	mux.HandleFunc("POST /api/admin/payments", mw.RequireAdmin(h.Dues.RecordPayment))
	mux.HandleFunc("DELETE /api/admin/payments/{id}", mw.RequireAdmin(h.Dues.DeletePayment))

	mux.HandleFunc("GET /api/admin/children", mw.RequireAdmin(h.Roster.ListChildren))
	mux.HandleFunc("GET /api/admin/children/export", mw.RequireAdmin(h.Roster.ExportChildren))
	mux.HandleFunc("GET /api/admin/children/{id}", mw.RequireAdmin(h.Roster.GetChild))
	mux.HandleFunc("DELETE /api/admin/children/{id}", mw.RequireAdmin(h.Roster.DeleteChild))
	mux.HandleFunc("POST /api/admin/children/{id}/clone", mw.RequireAdmin(h.Roster.CloneChild))

	mux.HandleFunc("GET /api/admin/trainers", mw.RequireAdmin(h.Trainers.ListTrainers))
	mux.HandleFunc("POST /api/admin/trainers", mw.RequireAdmin(h.Trainers.CreateTrainer))
	mux.HandleFunc("PUT /api/admin/trainers/{id}", mw.RequireAdmin(h.Trainers.UpdateTrainer))
	mux.HandleFunc("POST /api/admin/trainers/{id}/active", mw.RequireAdmin(h.Trainers.SetTrainerActive))
	mux.HandleFunc("PUT /api/admin/trainers/{id}/groups/{groupId}", mw.RequireAdmin(h.Trainers.AssignGroup))
	mux.HandleFunc("DELETE /api/admin/trainers/{id}/groups/{groupId}", mw.RequireAdmin(h.Trainers.UnassignGroup))

	mux.HandleFunc("GET /api/admin/audit", mw.RequireAdmin(h.Admin.ListAudit))
	mux.HandleFunc("GET /api/admin/settings/registration", mw.RequireAdmin(h.Admin.GetRegistrationSetting))
	mux.HandleFunc("PUT /api/admin/settings/registration", mw.RequireAdmin(h.Admin.SetRegistrationSetting))
	mux.HandleFunc("GET /api/admin/backup", mw.RequireAdmin(h.Admin.ExportDatabase))

	return Logging(mux)
}
