package payroll

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Settings drive the payroll formula.
type Settings struct {
	DefaultBaseSalary    decimal.Decimal
	BaseSalaryTable      map[string]decimal.Decimal // by designation, case-insensitive
	StandardMonthlyHours decimal.Decimal
	DeductionRate        decimal.Decimal
	BonusRate            decimal.Decimal
	BonusChancePercent   uint32
}

func DefaultSettings() Settings {
	return Settings{
		DefaultBaseSalary:    decimal.NewFromInt(5000),
		BaseSalaryTable:      map[string]decimal.Decimal{},
		StandardMonthlyHours: decimal.NewFromInt(160),
		DeductionRate:        decimal.RequireFromString("0.20"),
		BonusRate:            decimal.RequireFromString("0.05"),
		BonusChancePercent:   30,
	}
}

// ParseBaseSalaryTable reads "Designation=amount,Designation=amount".
func ParseBaseSalaryTable(raw string) (map[string]decimal.Decimal, error) {
	table := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		designation, amount, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid base salary entry %q, want Designation=amount", pair)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil || !value.IsPositive() {
			return nil, fmt.Errorf("invalid base salary amount for %q", designation)
		}
		table[strings.ToLower(strings.TrimSpace(designation))] = value
	}
	return table, nil
}

type Calculator struct {
	settings Settings
}

func NewCalculator(settings Settings) *Calculator {
	return &Calculator{settings: settings}
}

// BaseSalary resolves the employee's own salary, then the designation table, then the default.
func (c *Calculator) BaseSalary(e employee.Employee) decimal.Decimal {
	if e.BaseSalary != nil && e.BaseSalary.IsPositive() {
		return *e.BaseSalary
	}
	if amount, ok := c.settings.BaseSalaryTable[strings.ToLower(strings.TrimSpace(e.Designation))]; ok {
		return amount
	}
	return c.settings.DefaultBaseSalary
}

// Calculate computes one month of pay from the approved overtime in that month.
// The same inputs always give the same components.
func (c *Calculator) Calculate(e employee.Employee, month, year int, approved []overtime.OvertimeRecord) payroll.Components {
	base := c.BaseSalary(e)
	hourly := base.Div(c.settings.StandardMonthlyHours)

	hours := decimal.Zero
	overtimePay := decimal.Zero
	for _, o := range approved {
		hours = hours.Add(o.Hours)
		overtimePay = overtimePay.Add(o.Hours.Mul(hourly).Mul(o.RateMultiplier))
	}

	bonus := decimal.Zero
	if c.bonusApplies(e.ID, month, year) {
		bonus = base.Mul(c.settings.BonusRate)
	}

	deductions := base.Mul(c.settings.DeductionRate)

	base = base.Round(2)
	overtimePay = overtimePay.Round(2)
	bonus = bonus.Round(2)
	deductions = deductions.Round(2)

	return payroll.Components{
		BaseSalary:    base,
		OvertimeHours: hours,
		OvertimePay:   overtimePay,
		Bonus:         bonus,
		Deductions:    deductions,
		NetSalary:     base.Add(overtimePay).Add(bonus).Sub(deductions),
	}
}

// bonusApplies draws from a hash of (employee, period) so reprocessing a
// period never flips the bonus.
func (c *Calculator) bonusApplies(employeeID int64, month, year int) bool {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%d:%d:%d", employeeID, month, year)
	return h.Sum32()%100 < c.settings.BonusChancePercent
}
