package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"bikeways/internal/report"
	"bikeways/internal/types"
)

// dsn builds a properly encoded connection string for Oracle Autonomous Database
func dsn(username, password, host, port, service string, walletLocation string) string {
	if walletLocation != "" {
		// Use wallet-based mTLS connection
		return fmt.Sprintf(
			"oracle://%s:%s@%s:%s/%s?ssl=true&wallet_location=%s",
			url.PathEscape(username), url.PathEscape(password), host, port, service, url.QueryEscape(walletLocation))
	}

	return (&url.URL{
		Scheme:   "oracle",
		User:     url.UserPassword(username, password), // escapes automatically
		Host:     host + ":" + port,
		Path:     "/" + service, // keep full service name
		RawQuery: "ssl=true",    // ADB requires TCPS on 1522
	}).String()
}

// DBConfig holds database connection configuration. DSN is used as-is for
// sqlite; for oracle it overrides the host/port/service fields when set.
type DBConfig struct {
	Driver         string
	DSN            string
	Host           string
	Port           string
	Service        string
	Username       string
	Password       string
	WalletLocation string
}

// Database holds the database connection and configuration
type Database struct {
	db     *sql.DB
	config DBConfig
}

// NewDatabase opens and pings the configured database.
func NewDatabase(ctx context.Context, config DBConfig) (*Database, error) {
	var driver, connStr string
	switch config.Driver {
	case "sqlite":
		driver, connStr = "sqlite", config.DSN
		if connStr == "" {
			return nil, eris.New("database: sqlite requires a dsn")
		}
	case "oracle":
		driver, connStr = "oracle", config.DSN
		if connStr == "" {
			connStr = dsn(config.Username, config.Password, config.Host, config.Port, config.Service, config.WalletLocation)
		}
	default:
		return nil, eris.Errorf("database: unsupported driver %q", config.Driver)
	}

	zap.L().Debug("database: connecting", zap.String("driver", driver), zap.String("host", config.Host))

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, eris.Wrap(err, "database: open connection")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "database: ping")
	}

	return &Database{
		db:     db,
		config: config,
	}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// bind rewrites ? placeholders into the driver's syntax (:1, :2 for oracle).
func (d *Database) bind(query string) string {
	if d.config.Driver != "oracle" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, ":%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var migrations = []string{
	`CREATE TABLE bikeway_runs (
		run_id        VARCHAR(36) PRIMARY KEY,
		boundary_path VARCHAR(1024) NOT NULL,
		lanes_path    VARCHAR(1024) NOT NULL,
		lane_count    INTEGER NOT NULL,
		matched_count INTEGER NOT NULL,
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE bikeway_lanes (
		run_id       VARCHAR(36) NOT NULL,
		source_line  INTEGER NOT NULL,
		neighborhood VARCHAR(255),
		build_year   VARCHAR(32),
		aaa_segment  VARCHAR(32),
		longitude    DOUBLE PRECISION NOT NULL,
		latitude     DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE bikeway_counts (
		run_id       VARCHAR(36) NOT NULL,
		neighborhood VARCHAR(255) NOT NULL,
		build_year   VARCHAR(32) NOT NULL,
		lane_count   INTEGER NOT NULL
	)`,
	`CREATE TABLE bikeway_totals (
		run_id       VARCHAR(36) NOT NULL,
		neighborhood VARCHAR(255) NOT NULL,
		total        INTEGER NOT NULL,
		aaa_total    INTEGER NOT NULL
	)`,
}

// Migrate creates the result tables when they do not exist yet.
func (d *Database) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if d.config.Driver == "sqlite" {
			stmt = strings.Replace(stmt, "CREATE TABLE", "CREATE TABLE IF NOT EXISTS", 1)
		}
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			// Oracle has no IF NOT EXISTS; ORA-00955 means the table is already there.
			if d.config.Driver == "oracle" && strings.Contains(err.Error(), "ORA-00955") {
				continue
			}
			return eris.Wrap(err, "database: migrate")
		}
	}
	return nil
}

// Run describes one persisted execution of the report.
type Run struct {
	ID           string
	BoundaryPath string
	LanesPath    string
	LaneCount    int
	MatchedCount int
	CreatedAt    time.Time
}

// CreateRun records a new run and returns it with a fresh id.
func (d *Database) CreateRun(ctx context.Context, boundaryPath, lanesPath string, lanes []types.JoinedLane) (*Run, error) {
	run := &Run{
		ID:           uuid.New().String(),
		BoundaryPath: boundaryPath,
		LanesPath:    lanesPath,
		LaneCount:    len(lanes),
		CreatedAt:    time.Now().UTC(),
	}
	for _, l := range lanes {
		if l.Matched() {
			run.MatchedCount++
		}
	}

	_, err := d.db.ExecContext(ctx, d.bind(
		`INSERT INTO bikeway_runs (run_id, boundary_path, lanes_path, lane_count, matched_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		run.ID, run.BoundaryPath, run.LanesPath, run.LaneCount, run.MatchedCount, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "database: insert run")
	}
	return run, nil
}

// LatestRun returns the most recently created run, or nil when none exist.
func (d *Database) LatestRun(ctx context.Context) (*Run, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT run_id, boundary_path, lanes_path, lane_count, matched_count, created_at
		 FROM bikeway_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "database: query runs")
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, eris.Wrap(rows.Err(), "database: iterate runs")
	}
	var run Run
	if err := rows.Scan(&run.ID, &run.BoundaryPath, &run.LanesPath, &run.LaneCount, &run.MatchedCount, &run.CreatedAt); err != nil {
		return nil, eris.Wrap(err, "database: scan run")
	}
	return &run, nil
}

// InsertJoinedLanes stores every joined lane of a run in one transaction.
func (d *Database) InsertJoinedLanes(ctx context.Context, runID string, lanes []types.JoinedLane) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, d.bind(
			`INSERT INTO bikeway_lanes (run_id, source_line, neighborhood, build_year, aaa_segment, longitude, latitude)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return eris.Wrap(err, "database: prepare lane insert")
		}
		defer func() { _ = stmt.Close() }()

		for _, l := range lanes {
			if _, err := stmt.ExecContext(ctx, runID, l.Line, l.Neighborhood, l.Year, l.AAA, l.Point.X, l.Point.Y); err != nil {
				return eris.Wrapf(err, "database: insert lane line %d", l.Line)
			}
		}
		return nil
	})
}

// InsertReport stores the long-format counts and per-neighborhood totals.
func (d *Database) InsertReport(ctx context.Context, runID string, r *report.Report) error {
	return d.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range r.Melt() {
			if _, err := tx.ExecContext(ctx, d.bind(
				`INSERT INTO bikeway_counts (run_id, neighborhood, build_year, lane_count) VALUES (?, ?, ?, ?)`),
				runID, c.Neighborhood, c.Year, c.Count,
			); err != nil {
				return eris.Wrapf(err, "database: insert count %s/%s", c.Neighborhood, c.Year)
			}
		}
		for _, row := range r.Rows {
			if _, err := tx.ExecContext(ctx, d.bind(
				`INSERT INTO bikeway_totals (run_id, neighborhood, total, aaa_total) VALUES (?, ?, ?, ?)`),
				runID, row.Neighborhood, row.Total, row.AAATotal,
			); err != nil {
				return eris.Wrapf(err, "database: insert totals %s", row.Neighborhood)
			}
		}
		return nil
	})
}

// QueryReport rebuilds the stored report of a run.
func (d *Database) QueryReport(ctx context.Context, runID string) (*report.Report, error) {
	rows, err := d.db.QueryContext(ctx, d.bind(
		`SELECT neighborhood, build_year, lane_count FROM bikeway_counts WHERE run_id = ?`), runID)
	if err != nil {
		return nil, eris.Wrap(err, "database: query counts")
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[report.GroupKey]int)
	for rows.Next() {
		var k report.GroupKey
		var n int
		if err := rows.Scan(&k.Neighborhood, &k.Year, &n); err != nil {
			return nil, eris.Wrap(err, "database: scan count")
		}
		counts[k] = n
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "database: iterate counts")
	}

	aaa, err := d.queryAAA(ctx, runID)
	if err != nil {
		return nil, err
	}

	r := report.Pivot(counts)
	r.MergeAAA(aaa)
	return r, nil
}

func (d *Database) queryAAA(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx, d.bind(
		`SELECT neighborhood, aaa_total FROM bikeway_totals WHERE run_id = ?`), runID)
	if err != nil {
		return nil, eris.Wrap(err, "database: query totals")
	}
	defer func() { _ = rows.Close() }()

	aaa := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, eris.Wrap(err, "database: scan totals")
		}
		aaa[name] = n
	}
	return aaa, eris.Wrap(rows.Err(), "database: iterate totals")
}

func (d *Database) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "database: begin")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return eris.Wrap(tx.Commit(), "database: commit")
}
