package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

// Postgres keeps every collection in a single jsonb documents table.
// Filters use jsonb containment so equality matching behaves the same
// as the in-memory store.
type Postgres struct {
	db *sql.DB
}

var migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1-create-documents",
			Up: []string{
				`CREATE TABLE IF NOT EXISTS documents (
					id uuid PRIMARY KEY,
					collection text NOT NULL,
					data jsonb NOT NULL,
					created_at timestamptz NOT NULL DEFAULT now(),
					updated_at timestamptz NOT NULL DEFAULT now()
				)`,
				`CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection)`,
				`CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING gin (data)`,
			},
			Down: []string{`DROP TABLE documents`},
		},
	},
}

func NewPostgres(dsn string) (*Postgres, error) {
	var db *sql.DB
	var err error
	maxRetries := 5
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			log.Printf("Failed to open database (attempt %d/%d): %v", i+1, maxRetries, err)
			time.Sleep(retryDelay)
			continue
		}

		err = db.Ping()
		if err != nil {
			log.Printf("Failed to ping database (attempt %d/%d): %v", i+1, maxRetries, err)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}
		break
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Successfully connected to database")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return err
	}

	if n > 0 {
		log.Printf("Applied %d database migrations\n", n)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func marshalFilter(filter Filter) ([]byte, error) {
	if filter == nil {
		filter = Filter{}
	}
	return json.Marshal(filter)
}

func orderClause(sort *Sort) string {
	if sort == nil {
		return ""
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY (data->>'%s')::timestamptz %s", sort.Field, dir)
}

func (p *Postgres) FindOne(ctx context.Context, collection string, filter Filter, sort *Sort, out any) error {
	cond, err := marshalFilter(filter)
	if err != nil {
		return err
	}

	query := `SELECT data FROM documents WHERE collection = $1 AND data @> $2` + orderClause(sort) + ` LIMIT 1`

	var raw []byte
	err = p.db.QueryRowContext(ctx, query, collection, cond).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find one %s: %w", collection, err)
	}
	return json.Unmarshal(raw, out)
}

func (p *Postgres) Find(ctx context.Context, collection string, filter Filter, sort *Sort, out any) error {
	cond, err := marshalFilter(filter)
	if err != nil {
		return err
	}

	query := `SELECT data FROM documents WHERE collection = $1 AND data @> $2` + orderClause(sort)

	rows, err := p.db.QueryContext(ctx, query, collection, cond)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	raws := []json.RawMessage{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("find %s: %w", collection, err)
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}

	list, err := json.Marshal(raws)
	if err != nil {
		return err
	}
	return json.Unmarshal(list, out)
}

func (p *Postgres) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	cond, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}

	var n int64
	err = p.db.QueryRowContext(ctx,
		`SELECT count(*) FROM documents WHERE collection = $1 AND data @> $2`,
		collection, cond).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (p *Postgres) Distinct(ctx context.Context, collection, field string, filter Filter) ([]string, error) {
	cond, err := marshalFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT DISTINCT data->>$2 FROM documents WHERE collection = $1 AND data @> $3 AND data->>$2 IS NOT NULL`,
		collection, field, cond)
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", collection, field, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("distinct %s.%s: %w", collection, field, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (p *Postgres) Create(ctx context.Context, collection string, doc any) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", err
	}

	id := uuid.NewString()
	fields["_id"] = id
	data, err = json.Marshal(fields)
	if err != nil {
		return "", err
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO documents (id, collection, data) VALUES ($1, $2, $3)`,
		id, collection, data)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", collection, err)
	}
	return id, nil
}

func (p *Postgres) UpdateByFilter(ctx context.Context, collection string, filter Filter, set map[string]any) (int64, error) {
	cond, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}
	patch, err := json.Marshal(set)
	if err != nil {
		return 0, err
	}

	res, err := p.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $3, updated_at = now() WHERE collection = $1 AND data @> $2`,
		collection, cond, patch)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", collection, err)
	}
	return res.RowsAffected()
}
