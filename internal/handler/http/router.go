package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/handler/http/middleware"
	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
}

type Handlers struct {
	Auth         AuthHandler
	Registration RegistrationCodeHandler
	Employee     EmployeeHandler
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Overtime     OvertimeHandler
	Payroll      PayrollHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, store Pinger, employees middleware.EmployeeLookup, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			slog.Error("Storage ping failed", "error", err)
			response.ServiceUnavailable(w, "storage unavailable")
			return
		}
		response.Success(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.Post("/reset-password/validate", h.Auth.ValidateResetToken)
		})

		r.Route("/registration-codes", func(r chi.Router) {
			r.Get("/{code}/validate", h.Registration.Validate)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(employees))
				r.Use(middleware.RequirePermission(user.PermissionRegistrationManage))
				r.Post("/", h.Registration.Generate)
				r.Post("/{code}/consume", h.Registration.Consume)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(employees))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/me", h.Employee.GetMe)
				r.Put("/me", h.Employee.UpdateProfile)
				r.Put("/me/status", h.Employee.UpdateStatus)
				r.Get("/{id}", h.Employee.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeViewAll))
					r.Get("/", h.Employee.List)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Put("/{id}/role", h.Employee.UpdateRole)
					r.Put("/{id}/salary", h.Employee.SetBaseSalary)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/status", h.Attendance.Status)
				r.Get("/my", h.Attendance.GetMyAttendance)

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.List)
				r.With(middleware.RequirePermission(user.PermissionAttendanceOverride)).Put("/override", h.Attendance.Override)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Post("/", h.Leave.Submit)
				r.Get("/my", h.Leave.GetMy)
				r.Get("/{id}", h.Leave.Get)

				r.With(middleware.RequirePermission(user.PermissionLeaveViewAll)).Get("/", h.Leave.List)
				r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Put("/{id}/decision", h.Leave.Decide)
			})

			r.Route("/overtime", func(r chi.Router) {
				r.Post("/", h.Overtime.Submit)
				r.Get("/my", h.Overtime.GetMy)
				r.Get("/{id}", h.Overtime.Get)

				r.With(middleware.RequirePermission(user.PermissionOvertimeViewAll)).Get("/", h.Overtime.List)
				r.With(middleware.RequirePermission(user.PermissionOvertimeApprove)).Put("/{id}/decision", h.Overtime.Decide)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/my", h.Payroll.GetMy)
				r.Get("/{id}", h.Payroll.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollViewAll))
					r.Get("/", h.Payroll.List)
					r.Get("/summary", h.Payroll.Summary)
					r.Get("/export", h.Payroll.Export)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollProcess))
					r.Post("/process", h.Payroll.Process)
					r.Post("/draft", h.Payroll.CreateDraft)
				})
				r.With(middleware.RequirePermission(user.PermissionPayrollPay)).Put("/{id}/paid", h.Payroll.MarkPaid)
			})
		})
	})
	return r
}
