package civil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_UsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	instant := time.Date(2025, 3, 10, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, Date{2025, time.March, 10}, DateOf(instant, time.UTC))
	assert.Equal(t, Date{2025, time.March, 11}, DateOf(instant, jakarta))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{2024, time.February, 29}, d)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestDate_Ordering(t *testing.T) {
	a := Date{2025, time.January, 31}
	b := Date{2025, time.February, 1}

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
	assert.Equal(t, b, a.AddDays(1))
	assert.Equal(t, Date{2024, time.December, 31}, a.AddDays(-31))
}

func TestDate_InMonth(t *testing.T) {
	d := Date{2025, time.June, 15}
	assert.True(t, d.InMonth(6, 2025))
	assert.False(t, d.InMonth(6, 2024))
	assert.False(t, d.InMonth(7, 2025))
}

func TestDate_EndIn(t *testing.T) {
	d := Date{2025, time.June, 15}
	end := d.EndIn(time.UTC)
	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC), end)
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	b, err := json.Marshal(payload{Date: Date{2025, time.July, 4}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-07-04"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-12-01"}`), &p))
	assert.Equal(t, Date{2025, time.December, 1}, p.Date)
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Date{2025, time.January, 2}, d)

	require.NoError(t, d.Scan("2025-01-03"))
	assert.Equal(t, Date{2025, time.January, 3}, d)

	assert.Error(t, d.Scan(42))
}
