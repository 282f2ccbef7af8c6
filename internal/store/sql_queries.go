package store

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const (
	tripsTable        = "trips"
	destinationsTable = "destinations"
	expensesTable     = "expenses"
)

var (
	tripColumns = []string{
		"id", "user_id", "name", "description", "start_date", "end_date",
		"budget", "budget_currency", "created_at", "updated_at",
	}

	destinationColumns = []string{
		"id", "trip_id", "name", "country_code", "city", "latitude", "longitude",
		"arrival_date", "departure_date", "order_index", "created_at", "updated_at",
	}

	expenseColumns = []string{
		"id", "trip_id", "destination_id", "amount", "currency", "category",
		"payment_method", "description", "expense_date", "expense_time",
		"created_at", "updated_at",
	}
)

// ownedByUser restricts a destination or expense statement to rows whose
// trip belongs to userID.
func ownedByUser(userID int64) sq.Sqlizer {
	return sq.Expr("trip_id IN (SELECT id FROM trips WHERE user_id = ?)", userID)
}

// bumpUpdatedAt keeps updated_at monotonic: max(stored, now).
func bumpUpdatedAt(now time.Time) sq.Sqlizer {
	return sq.Expr("CASE WHEN updated_at > ? THEN updated_at ELSE ? END", now, now)
}

func returning(columns []string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}

func prefixed(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

// selectWithOwner selects the child table columns plus the owning trip's
// user_id as the last column.
func selectWithOwner(builder sq.StatementBuilderType, table string, columns []string) sq.SelectBuilder {
	return builder.
		Select(append(prefixed("c", columns), "t.user_id")...).
		From(table + " c").
		Join("trips t ON t.id = c.trip_id")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// timestamp scans a TIMESTAMP column into a UTC time.Time. SQLite returns
// text instead of time.Time when the declared column type is not visible to
// the driver, as in RETURNING clauses.
type timestamp struct {
	t *time.Time
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v.UTC()
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	}
	return fmt.Errorf("cannot scan %T into timestamp", src)
}

func (ts timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, strings.TrimSuffix(s, "Z")); err == nil {
			*ts.t = parsed.UTC()
			return nil
		}
		if parsed, err := time.Parse(layout, s); err == nil {
			*ts.t = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as timestamp", s)
}
