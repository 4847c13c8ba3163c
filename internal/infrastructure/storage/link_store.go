package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/araddon/dateparse"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"NewsSpider/internal/domain"
	"NewsSpider/internal/ports"
)

const (
	linksTable = "links"

	pqUniqueViolation = "23505"
)

var schemas = map[Dialect]string{
	DialectPostgres: `CREATE TABLE IF NOT EXISTS links (
		url  VARCHAR(1024) PRIMARY KEY,
		date TIMESTAMPTZ,
		tags VARCHAR(4096) NOT NULL
	)`,
	DialectSQLite: `CREATE TABLE IF NOT EXISTS links (
		url  VARCHAR(1024) PRIMARY KEY,
		date DATETIME,
		tags VARCHAR(4096) NOT NULL
	)`,
}

// LinkStore persists processed links. The url column is the primary key, so a second
// insert of the same url fails in the database, not only in pipeline logic.
type LinkStore struct {
	db      *sql.DB
	dialect Dialect
	builder sq.StatementBuilderType
}

var _ ports.LinkStore = (*LinkStore)(nil)

// NewLinkStore wires a sql.DB of the given dialect.
func NewLinkStore(db *sql.DB, dialect Dialect) *LinkStore {
	var placeholder sq.PlaceholderFormat = sq.Question
	if dialect == DialectPostgres {
		placeholder = sq.Dollar
	}
	return &LinkStore{
		db:      db,
		dialect: dialect,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// EnsureSchema creates the links table unless it already exists.
func (s *LinkStore) EnsureSchema(ctx context.Context) error {
	ddl, ok := schemas[s.dialect]
	if !ok {
		return fmt.Errorf("unknown dialect %q", s.dialect)
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create links table: %w", err)
	}
	return nil
}

// Exists reports whether a record for url is already stored.
func (s *LinkStore) Exists(ctx context.Context, url string) (bool, error) {
	query, args, err := s.builder.
		Select("1").
		From(linksTable).
		Where(sq.Eq{"url": url}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query link: %w", err)
	}
	return true, nil
}

// Create inserts a new record. It returns an error wrapping domain.ErrDuplicateKey
// when the url is already stored.
func (s *LinkStore) Create(ctx context.Context, record domain.LinkRecord) error {
	query, args, err := s.builder.
		Insert(linksTable).
		Columns("url", "date", "tags").
		Values(record.URL, record.PublishDate.UTC(), record.Tags).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert link %s: %w", record.URL, domain.ErrDuplicateKey)
		}
		return fmt.Errorf("insert link %s: %w", record.URL, err)
	}
	return nil
}

// Recent returns up to limit records, newest publish date first.
func (s *LinkStore) Recent(ctx context.Context, limit int) ([]domain.LinkRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, args, err := s.builder.
		Select("url", "date", "tags").
		From(linksTable).
		OrderBy("date DESC", "url").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var records []domain.LinkRecord
	for rows.Next() {
		var (
			record domain.LinkRecord
			date   timestamp
		)
		if err := rows.Scan(&record.URL, &date, &record.Tags); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		record.PublishDate = date.Time
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}

	return false
}

// timestamp scans the date column regardless of whether the driver hands back a
// time.Time or its textual form.
type timestamp struct {
	Time time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case time.Time:
		t.Time = v.UTC()
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported date type %T", src)
	}
	return nil
}

func (t *timestamp) parse(value string) error {
	parsed, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", value, err)
	}
	t.Time = parsed.UTC()
	return nil
}
