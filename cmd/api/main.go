package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/attendly/attendly-backend-go/internal/config"
	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/auth"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/leave"
	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/fixtures"
	appHTTP "github.com/attendly/attendly-backend-go/internal/handler/http"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/cron"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/email"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
	"github.com/attendly/attendly-backend-go/internal/repository/kv"
	"github.com/attendly/attendly-backend-go/internal/repository/postgresql"
	attendanceService "github.com/attendly/attendly-backend-go/internal/service/attendance"
	serviceAuth "github.com/attendly/attendly-backend-go/internal/service/auth"
	employeeService "github.com/attendly/attendly-backend-go/internal/service/employee"
	leaveService "github.com/attendly/attendly-backend-go/internal/service/leave"
	overtimeService "github.com/attendly/attendly-backend-go/internal/service/overtime"
	payrollService "github.com/attendly/attendly-backend-go/internal/service/payroll"
	registrationService "github.com/attendly/attendly-backend-go/internal/service/registration"
	"github.com/shopspring/decimal"
)

// storage bundles the repositories of whichever backend STORAGE_DRIVER selects.
type storage struct {
	tx         database.Transactor
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	leave      leave.LeaveRequestRepository
	overtime   overtime.OvertimeRepository
	payroll    payroll.PayrollRepository
	codes      registration.RegistrationCodeRepository
	resets     auth.PasswordResetRepository
	pinger     appHTTP.Pinger
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.close()

	clk := clock.Real()
	loc := cfg.Location()

	if _, err := fixtures.EnsureAdmin(ctx, store.employees, fixtures.AdminSeed{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, clk.Now()); err != nil {
		slog.Error("Failed to seed administrator", "error", err)
		os.Exit(1)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		slog.Error("Failed to initialise JWT service", "error", err)
		os.Exit(1)
	}

	settings, err := payrollSettings(cfg.Payroll)
	if err != nil {
		slog.Error("Invalid payroll configuration", "error", err)
		os.Exit(1)
	}

	emailSvc, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		slog.Error("Failed to initialise email service", "error", err)
		os.Exit(1)
	}

	authSvc := serviceAuth.NewAuthService(
		store.tx,
		store.employees,
		store.codes,
		store.resets,
		JWTService,
		emailSvc,
		serviceAuth.ResetSettings{URL: cfg.Reset.URL, Expiry: cfg.ResetExpiration()},
		clk,
	)
	codeSvc := registrationService.NewRegistrationCodeService(store.codes, clk, cfg.Registration.DefaultExpiryDays)
	employeeSvc := employeeService.NewEmployeeService(store.tx, store.employees, clk)
	attendanceSvc := attendanceService.NewAttendanceService(store.tx, store.attendance, store.employees, clk, loc)
	leaveSvc := leaveService.NewLeaveService(store.tx, store.leave, store.employees, clk)
	overtimeSvc := overtimeService.NewOvertimeService(store.tx, store.overtime, store.employees, clk)
	payrollSvc := payrollService.NewPayrollService(
		store.tx,
		store.payroll,
		store.employees,
		store.overtime,
		payrollService.NewCalculator(settings),
		clk,
	)

	scheduler := cron.NewScheduler(loc)
	if err := cron.NewAttendanceJobs(attendanceSvc).RegisterJobs(scheduler, cfg.Jobs.StaleSessionCron); err != nil {
		slog.Error("Failed to register cron jobs", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		store.pinger,
		store.employees,
		appHTTP.Handlers{
			Auth:         appHTTP.NewAuthHandler(authSvc),
			Registration: appHTTP.NewRegistrationCodeHandler(codeSvc),
			Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
			Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
			Leave:        appHTTP.NewLeaveHandler(leaveSvc),
			Overtime:     appHTTP.NewOvertimeHandler(overtimeSvc),
			Payroll:      appHTTP.NewPayrollHandler(payrollSvc),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Storage.Driver, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return nil, err
		}
		if cfg.Database.ApplySchema {
			if err := postgresql.EnsureSchema(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &storage{
			tx:         postgresql.NewTransactor(db),
			employees:  postgresql.NewEmployeeRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			leave:      postgresql.NewLeaveRequestRepository(db),
			overtime:   postgresql.NewOvertimeRepository(db),
			payroll:    postgresql.NewPayrollRepository(db),
			codes:      postgresql.NewRegistrationCodeRepository(db),
			resets:     postgresql.NewPasswordResetRepository(db),
			pinger:     db,
			close:      db.Close,
		}, nil

	case config.StorageRedis:
		driver, err := recordstore.NewRedis(ctx, recordstore.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return kvStorage(driver), nil

	default:
		slog.Warn("Using in-memory storage; data is lost on restart")
		return kvStorage(recordstore.NewMemory()), nil
	}
}

func kvStorage(driver recordstore.Driver) *storage {
	return &storage{
		tx:         kv.NewTransactor(driver),
		employees:  kv.NewEmployeeRepository(driver),
		attendance: kv.NewAttendanceRepository(driver),
		leave:      kv.NewLeaveRequestRepository(driver),
		overtime:   kv.NewOvertimeRepository(driver),
		payroll:    kv.NewPayrollRepository(driver),
		codes:      kv.NewRegistrationCodeRepository(driver),
		resets:     kv.NewPasswordResetRepository(driver),
		pinger:     driver,
		close: func() {
			if err := driver.Close(); err != nil {
				slog.Error("Failed to close record store", "error", err)
			}
		},
	}
}

func payrollSettings(pc config.PayrollConfig) (payrollService.Settings, error) {
	settings := payrollService.DefaultSettings()

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"PAYROLL_DEFAULT_BASE_SALARY", pc.DefaultBaseSalary, &settings.DefaultBaseSalary},
		{"PAYROLL_STANDARD_MONTHLY_HOURS", pc.StandardMonthlyHours, &settings.StandardMonthlyHours},
		{"PAYROLL_DEDUCTION_RATE", pc.DeductionRate, &settings.DeductionRate},
		{"PAYROLL_BONUS_RATE", pc.BonusRate, &settings.BonusRate},
	}
	for _, f := range fields {
		value, err := decimal.NewFromString(f.raw)
		if err != nil || value.IsNegative() {
			return settings, fmt.Errorf("invalid %s %q", f.name, f.raw)
		}
		*f.dst = value
	}
	if !settings.StandardMonthlyHours.IsPositive() {
		return settings, fmt.Errorf("PAYROLL_STANDARD_MONTHLY_HOURS must be positive")
	}

	table, err := payrollService.ParseBaseSalaryTable(pc.BaseSalaryTable)
	if err != nil {
		return settings, err
	}
	settings.BaseSalaryTable = table
	settings.BonusChancePercent = uint32(pc.BonusChancePercent)

	return settings, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
