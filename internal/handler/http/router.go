package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	logger *slog.Logger,
	allowedOrigins []string,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/calendar/working-days", attendanceHandler.WorkingDays)

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).
					Get("/employees/{employeeID}/summary", attendanceHandler.EmployeeSummary)

				// Manager or owner
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/departments", attendanceHandler.Departments)
				})

				// Owner only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireOwner)
					r.Use(middleware.RequirePermission(user.PermissionReportsCompany))
					r.Get("/company", attendanceHandler.Company)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionLeaveViewOwn))

				r.Get("/balances/{employeeID}", leaveHandler.Balances)
				r.Get("/overlaps/{employeeID}", leaveHandler.Overlaps)

				r.Route("/requests", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).
						Post("/", leaveHandler.CreateRequest)

					// Manager or owner
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Post("/{requestID}/approve", leaveHandler.ApproveRequest)
						r.Post("/{requestID}/reject", leaveHandler.RejectRequest)
					})
				})
			})
		})
	})
	return r
}
