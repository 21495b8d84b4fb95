package doctor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/colonyops/mtdock/internal/data/db"
)

// DatabaseCheck pings the local database, runs SQLite's integrity check and
// compares the applied schema with the migrations in the binary.
type DatabaseCheck struct {
	conn *sql.DB
	path string
}

// NewDatabaseCheck creates a new database check.
func NewDatabaseCheck(conn *sql.DB, path string) *DatabaseCheck {
	return &DatabaseCheck{conn: conn, path: path}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if err := c.conn.PingContext(ctx); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "connection",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  "connection",
		Status: StatusPass,
		Detail: c.path,
	})

	var verdict string
	if err := c.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&verdict); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "integrity",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	if verdict != "ok" {
		result.Items = append(result.Items, CheckItem{
			Label:  "integrity",
			Status: StatusFail,
			Detail: fmt.Sprintf("%s (move the database aside to start fresh)", verdict),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{Label: "integrity", Status: StatusPass})
	result.Items = append(result.Items, c.schemaItem(ctx))
	return result
}

func (c *DatabaseCheck) schemaItem(ctx context.Context) CheckItem {
	status, err := db.Schema(ctx, c.conn)
	switch {
	case err != nil:
		return CheckItem{Label: "schema", Status: StatusFail, Detail: err.Error()}
	case !status.Current():
		return CheckItem{
			Label:  "schema",
			Status: StatusWarn,
			Detail: fmt.Sprintf("version %d, %d migration(s) pending", status.Version, status.Pending),
		}
	default:
		return CheckItem{Label: "schema", Status: StatusPass, Detail: fmt.Sprintf("version %d", status.Version)}
	}
}
