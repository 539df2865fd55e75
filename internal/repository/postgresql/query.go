package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
)

// conditions collects WHERE clauses with their positional arguments.
type conditions struct {
	clauses []string
	args    []any
}

// add appends a clause; format holds one %d for the argument's position.
func (c *conditions) add(format string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(format, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return "TRUE"
	}
	return strings.Join(c.clauses, " AND ")
}

// page returns a LIMIT/OFFSET suffix and its arguments. limit 0 means every row.
func (c *conditions) page(page, limit int) (string, []any) {
	if limit <= 0 {
		return "", c.args
	}
	n := len(c.args)
	args := append(append([]any{}, c.args...), limit, pagination.Offset(page, limit))
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", n+1, n+2), args
}

func sortDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

// missingOrStale explains why a versioned UPDATE matched no row.
func missingOrStale(ctx context.Context, q database.Querier, table string, id int64, notFound error) error {
	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check %s %d: %w", table, id, err)
	}
	if !exists {
		return notFound
	}
	return database.ErrConcurrentUpdate
}
