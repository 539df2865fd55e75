package kv

import (
	"context"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/auth"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/leave"
	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
	"github.com/shopspring/decimal"
)

// Record kinds
const (
	kindEmployees         = "employees"
	kindAttendance        = "attendance"
	kindLeaveRequests     = "leave_requests"
	kindOvertime          = "overtime"
	kindPayroll           = "payroll"
	kindRegistrationCodes = "registration_codes"
	kindPasswordResets    = "password_reset_tokens"
)

type employeeDoc struct {
	EmployeeCode        string           `json:"employee_code"`
	Name                string           `json:"name"`
	Email               string           `json:"email"`
	PasswordHash        string           `json:"password_hash"`
	Department          string           `json:"department"`
	Designation         string           `json:"designation"`
	Role                string           `json:"role"`
	Status              string           `json:"status"`
	AvatarURL           *string          `json:"avatar_url,omitempty"`
	OrganizationLogoURL *string          `json:"organization_logo_url,omitempty"`
	BaseSalary          *decimal.Decimal `json:"base_salary,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func newEmployeeDoc(e employee.Employee) employeeDoc {
	return employeeDoc{
		EmployeeCode:        e.EmployeeCode,
		Name:                e.Name,
		Email:               e.Email,
		PasswordHash:        e.PasswordHash,
		Department:          e.Department,
		Designation:         e.Designation,
		Role:                string(e.Role),
		Status:              string(e.Status),
		AvatarURL:           e.AvatarURL,
		OrganizationLogoURL: e.OrganizationLogoURL,
		BaseSalary:          e.BaseSalary,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func (d employeeDoc) toEntity(id, version int64) employee.Employee {
	return employee.Employee{
		ID:                  id,
		EmployeeCode:        d.EmployeeCode,
		Name:                d.Name,
		Email:               d.Email,
		PasswordHash:        d.PasswordHash,
		Department:          d.Department,
		Designation:         d.Designation,
		Role:                user.Role(d.Role),
		Status:              employee.Status(d.Status),
		AvatarURL:           d.AvatarURL,
		OrganizationLogoURL: d.OrganizationLogoURL,
		BaseSalary:          d.BaseSalary,
		Version:             version,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

type attendanceDoc struct {
	EmployeeID         int64      `json:"employee_id"`
	Date               civil.Date `json:"date"`
	CheckIn            *time.Time `json:"check_in,omitempty"`
	CheckOut           *time.Time `json:"check_out,omitempty"`
	WorkHoursInMinutes *int       `json:"work_hours_in_minutes,omitempty"`
	ModifiedBy         *int64     `json:"modified_by,omitempty"`
	ModifiedAt         *time.Time `json:"modified_at,omitempty"`
	IsAdminOverride    bool       `json:"is_admin_override"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func newAttendanceDoc(a attendance.Attendance) attendanceDoc {
	return attendanceDoc{
		EmployeeID:         a.EmployeeID,
		Date:               a.Date,
		CheckIn:            a.CheckIn,
		CheckOut:           a.CheckOut,
		WorkHoursInMinutes: a.WorkHoursInMinutes,
		ModifiedBy:         a.ModifiedBy,
		ModifiedAt:         a.ModifiedAt,
		IsAdminOverride:    a.IsAdminOverride,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func (d attendanceDoc) toEntity(id, version int64) attendance.Attendance {
	return attendance.Attendance{
		ID:                 id,
		EmployeeID:         d.EmployeeID,
		Date:               d.Date,
		CheckIn:            d.CheckIn,
		CheckOut:           d.CheckOut,
		WorkHoursInMinutes: d.WorkHoursInMinutes,
		ModifiedBy:         d.ModifiedBy,
		ModifiedAt:         d.ModifiedAt,
		IsAdminOverride:    d.IsAdminOverride,
		Version:            version,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type leaveRequestDoc struct {
	EmployeeID int64      `json:"employee_id"`
	StartDate  civil.Date `json:"start_date"`
	EndDate    civil.Date `json:"end_date"`
	Reason     string     `json:"reason"`
	LeaveType  string     `json:"leave_type"`
	Status     string     `json:"status"`
	DecidedBy  *int64     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func newLeaveRequestDoc(r leave.LeaveRequest) leaveRequestDoc {
	return leaveRequestDoc{
		EmployeeID: r.EmployeeID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Reason:     r.Reason,
		LeaveType:  string(r.LeaveType),
		Status:     string(r.Status),
		DecidedBy:  r.DecidedBy,
		DecidedAt:  r.DecidedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (d leaveRequestDoc) toEntity(id, version int64) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:         id,
		EmployeeID: d.EmployeeID,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		Reason:     d.Reason,
		LeaveType:  leave.LeaveType(d.LeaveType),
		Status:     leave.LeaveRequestStatus(d.Status),
		DecidedBy:  d.DecidedBy,
		DecidedAt:  d.DecidedAt,
		Version:    version,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type overtimeDoc struct {
	EmployeeID     int64           `json:"employee_id"`
	Date           civil.Date      `json:"date"`
	Hours          decimal.Decimal `json:"hours"`
	RateMultiplier decimal.Decimal `json:"rate_multiplier"`
	Reason         string          `json:"reason"`
	Status         string          `json:"status"`
	ApprovedBy     *int64          `json:"approved_by,omitempty"`
	DecidedAt      *time.Time      `json:"decided_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func newOvertimeDoc(r overtime.OvertimeRecord) overtimeDoc {
	return overtimeDoc{
		EmployeeID:     r.EmployeeID,
		Date:           r.Date,
		Hours:          r.Hours,
		RateMultiplier: r.RateMultiplier,
		Reason:         r.Reason,
		Status:         string(r.Status),
		ApprovedBy:     r.ApprovedBy,
		DecidedAt:      r.DecidedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (d overtimeDoc) toEntity(id, version int64) overtime.OvertimeRecord {
	return overtime.OvertimeRecord{
		ID:             id,
		EmployeeID:     d.EmployeeID,
		Date:           d.Date,
		Hours:          d.Hours,
		RateMultiplier: d.RateMultiplier,
		Reason:         d.Reason,
		Status:         overtime.OvertimeStatus(d.Status),
		ApprovedBy:     d.ApprovedBy,
		DecidedAt:      d.DecidedAt,
		Version:        version,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type payrollDoc struct {
	EmployeeID    int64           `json:"employee_id"`
	PeriodMonth   int             `json:"period_month"`
	PeriodYear    int             `json:"period_year"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	OvertimePay   decimal.Decimal `json:"overtime_pay"`
	Bonus         decimal.Decimal `json:"bonus"`
	Deductions    decimal.Decimal `json:"deductions"`
	NetSalary     decimal.Decimal `json:"net_salary"`
	Status        string          `json:"status"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaidBy        *int64          `json:"paid_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func newPayrollDoc(r payroll.PayrollRecord) payrollDoc {
	return payrollDoc{
		EmployeeID:    r.EmployeeID,
		PeriodMonth:   r.PeriodMonth,
		PeriodYear:    r.PeriodYear,
		BaseSalary:    r.BaseSalary,
		OvertimeHours: r.OvertimeHours,
		OvertimePay:   r.OvertimePay,
		Bonus:         r.Bonus,
		Deductions:    r.Deductions,
		NetSalary:     r.NetSalary,
		Status:        string(r.Status),
		ProcessedAt:   r.ProcessedAt,
		PaidAt:        r.PaidAt,
		PaidBy:        r.PaidBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (d payrollDoc) toEntity(id, version int64) payroll.PayrollRecord {
	return payroll.PayrollRecord{
		ID:            id,
		EmployeeID:    d.EmployeeID,
		PeriodMonth:   d.PeriodMonth,
		PeriodYear:    d.PeriodYear,
		BaseSalary:    d.BaseSalary,
		OvertimeHours: d.OvertimeHours,
		OvertimePay:   d.OvertimePay,
		Bonus:         d.Bonus,
		Deductions:    d.Deductions,
		NetSalary:     d.NetSalary,
		Status:        payroll.PayrollStatus(d.Status),
		ProcessedAt:   d.ProcessedAt,
		PaidAt:        d.PaidAt,
		PaidBy:        d.PaidBy,
		Version:       version,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type registrationCodeDoc struct {
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	UsedBy    *int64     `json:"used_by,omitempty"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

func newRegistrationCodeDoc(c registration.RegistrationCode) registrationCodeDoc {
	return registrationCodeDoc{
		Code:      c.Code,
		ExpiresAt: c.ExpiresAt,
		Used:      c.Used,
		UsedAt:    c.UsedAt,
		UsedBy:    c.UsedBy,
		CreatedBy: c.CreatedBy,
		Role:      string(c.Role),
		CreatedAt: c.CreatedAt,
	}
}

func (d registrationCodeDoc) toEntity() registration.RegistrationCode {
	return registration.RegistrationCode{
		Code:      d.Code,
		ExpiresAt: d.ExpiresAt,
		Used:      d.Used,
		UsedAt:    d.UsedAt,
		UsedBy:    d.UsedBy,
		CreatedBy: d.CreatedBy,
		Role:      user.Role(d.Role),
		CreatedAt: d.CreatedAt,
	}
}

type passwordResetDoc struct {
	Email     string     `json:"email"`
	TokenHash string     `json:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newPasswordResetDoc(t auth.PasswordResetToken) passwordResetDoc {
	return passwordResetDoc{
		Email:     t.Email,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}

func (d passwordResetDoc) toEntity() auth.PasswordResetToken {
	return auth.PasswordResetToken{
		Email:     d.Email,
		TokenHash: d.TokenHash,
		ExpiresAt: d.ExpiresAt,
		Used:      d.Used,
		UsedAt:    d.UsedAt,
		CreatedAt: d.CreatedAt,
	}
}

// directory resolves employee ids to the joined fields list views show.
type directory struct {
	employees *recordstore.Collection[employeeDoc]
}

func newDirectory(driver recordstore.Driver) directory {
	return directory{employees: recordstore.NewCollection[employeeDoc](driver, kindEmployees)}
}

func (d directory) byID(ctx context.Context) (map[int64]employeeDoc, error) {
	all, err := d.employees.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]employeeDoc, len(all))
	for _, e := range all {
		out[e.ID] = e.Value
	}
	return out, nil
}
