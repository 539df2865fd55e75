package payroll

import (
	"testing"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func approvedOvertime(hours, multiplier string) overtime.OvertimeRecord {
	return overtime.OvertimeRecord{
		Hours:          dec(hours),
		RateMultiplier: dec(multiplier),
		Status:         overtime.OvertimeStatusApproved,
	}
}

func TestCalculator_BaseSalaryResolution(t *testing.T) {
	settings := DefaultSettings()
	settings.BaseSalaryTable = map[string]decimal.Decimal{"engineer": dec("8000")}
	calc := NewCalculator(settings)

	own := dec("9000")
	assert.True(t, calc.BaseSalary(employee.Employee{BaseSalary: &own, Designation: "Engineer"}).Equal(own))
	assert.True(t, calc.BaseSalary(employee.Employee{Designation: " Engineer "}).Equal(dec("8000")))
	assert.True(t, calc.BaseSalary(employee.Employee{Designation: "Designer"}).Equal(dec("5000")))
}

func TestCalculator_Formula(t *testing.T) {
	calc := NewCalculator(DefaultSettings())
	emp := employee.Employee{ID: 1}

	got := calc.Calculate(emp, 3, 2025, []overtime.OvertimeRecord{
		approvedOvertime("2", "1.5"),
		approvedOvertime("1", "2"),
	})

	// hourly = 5000 / 160 = 31.25
	// overtime = 2*31.25*1.5 + 1*31.25*2 = 93.75 + 62.5
	assert.True(t, got.BaseSalary.Equal(dec("5000")))
	assert.True(t, got.OvertimeHours.Equal(dec("3")))
	assert.True(t, got.OvertimePay.Equal(dec("156.25")), got.OvertimePay.String())
	assert.True(t, got.Deductions.Equal(dec("1000")))
	assert.True(t, got.Bonus.Equal(decimal.Zero) || got.Bonus.Equal(dec("250")), got.Bonus.String())

	want := got.BaseSalary.Add(got.OvertimePay).Add(got.Bonus).Sub(got.Deductions)
	assert.True(t, got.NetSalary.Equal(want))
}

func TestCalculator_NoOvertime(t *testing.T) {
	calc := NewCalculator(DefaultSettings())

	got := calc.Calculate(employee.Employee{ID: 7}, 1, 2025, nil)
	assert.True(t, got.OvertimePay.IsZero())
	assert.True(t, got.OvertimeHours.IsZero())
}

func TestCalculator_IsDeterministic(t *testing.T) {
	calc := NewCalculator(DefaultSettings())
	emp := employee.Employee{ID: 3}
	records := []overtime.OvertimeRecord{approvedOvertime("4.5", "1.5")}

	first := calc.Calculate(emp, 6, 2025, records)
	for i := 0; i < 10; i++ {
		again := calc.Calculate(emp, 6, 2025, records)
		assert.True(t, first.NetSalary.Equal(again.NetSalary))
		assert.True(t, first.Bonus.Equal(again.Bonus))
	}
}

func TestCalculator_BonusRateIsRoughlyThirtyPercent(t *testing.T) {
	calc := NewCalculator(DefaultSettings())

	hits := 0
	const draws = 2400
	for id := int64(1); id <= 200; id++ {
		for month := 1; month <= 12; month++ {
			if calc.bonusApplies(id, month, 2025) {
				hits++
			}
		}
	}
	ratio := float64(hits) / draws
	assert.InDelta(t, 0.30, ratio, 0.06)
}

func TestCalculator_AlwaysAndNeverBonus(t *testing.T) {
	settings := DefaultSettings()
	settings.BonusChancePercent = 100
	always := NewCalculator(settings).Calculate(employee.Employee{ID: 1}, 1, 2025, nil)
	assert.True(t, always.Bonus.Equal(dec("250")))

	settings.BonusChancePercent = 0
	never := NewCalculator(settings).Calculate(employee.Employee{ID: 1}, 1, 2025, nil)
	assert.True(t, never.Bonus.IsZero())
	assert.True(t, never.NetSalary.Equal(dec("4000")))
}

func TestParseBaseSalaryTable(t *testing.T) {
	table, err := ParseBaseSalaryTable("Engineer=8000, Manager = 9500.50,")
	require.NoError(t, err)
	assert.True(t, table["engineer"].Equal(dec("8000")))
	assert.True(t, table["manager"].Equal(dec("9500.50")))

	empty, err := ParseBaseSalaryTable("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseBaseSalaryTable("Engineer")
	assert.Error(t, err)
	_, err = ParseBaseSalaryTable("Engineer=-5")
	assert.Error(t, err)
}
