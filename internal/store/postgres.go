package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gamma-omg/tenwords/internal/model"
	"github.com/lib/pq"
)

const (
	errUniqueViolation pq.ErrorCode = "23505"

	wordsKeyConstraint = "words_key_unique"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

// PostgresStore implements DataStore on top of PostgreSQL.
type PostgresStore struct {
	db dbtx
}

func NewPostgresDB(cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindExisting returns the subset of r.Keys already stored by any owner.
func (s *PostgresStore) FindExisting(ctx context.Context, r FindExistingRequest) ([]string, error) {
	if len(r.Keys) == 0 {
		return []string{}, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key FROM words WHERE key = ANY($1)", pq.Array(r.Keys))
	if err != nil {
		return nil, fmt.Errorf("query existing keys: %w", err)
	}
	defer rows.Close()

	existing := make([]string, 0, len(r.Keys))
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		existing = append(existing, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}

	return existing, nil
}

// InsertWords stores the words one by one inside a single transaction. A unique
// key violation aborts and rolls back the batch with a *DuplicateKeyError.
func (s *PostgresStore) InsertWords(ctx context.Context, r InsertWordsRequest) (int, error) {
	if len(r.Words) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.WithinTx(ctx, func(tx DataStore) error {
		pg := tx.(*PostgresStore)
		for _, w := range r.Words {
			_, err := pg.db.ExecContext(ctx,
				"INSERT INTO words (id, owner, display, key, added_at) VALUES ($1, $2, $3, $4, $5)",
				w.ID, w.Owner, w.Display, w.Key, w.AddedAt)
			if err != nil {
				if isKeyViolation(err) {
					return &DuplicateKeyError{Keys: []string{w.Key}, Err: err}
				}

				return fmt.Errorf("insert word %q: %w", w.Key, err)
			}

			inserted++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert words: %w", err)
	}

	return inserted, nil
}

var sortColumns = map[model.SortField]string{
	model.SortAdded: "added_at",
	model.SortAlpha: "key",
}

func (s *PostgresStore) ListWords(ctx context.Context, r ListWordsRequest) ([]model.Word, error) {
	col, ok := sortColumns[r.Sort]
	if !ok {
		col = sortColumns[model.SortAdded]
	}

	dir := "DESC"
	if r.Order == model.OrderAsc {
		dir = "ASC"
	}

	query := fmt.Sprintf(`SELECT id, owner, display, key, added_at
		 FROM words
		 WHERE ($1 = '' OR owner = $1)
		   AND ($2 = '' OR key LIKE '%%' || $2 || '%%' ESCAPE '\')
		 ORDER BY %s %s, key ASC
		 LIMIT $3`, col, dir)

	rows, err := s.db.QueryContext(ctx, query, r.Owner, escapeLike(r.Search), r.Limit)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	words := make([]model.Word, 0, r.Limit)
	for rows.Next() {
		var w model.Word
		if err := rows.Scan(&w.ID, &w.Owner, &w.Display, &w.Key, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate words: %w", err)
	}

	return words, nil
}

// WithinTx runs fn in a transaction. Calls made on a store that is already
// transactional join the outer transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx DataStore) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return fn(s)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	sx := &PostgresStore{db: tx}
	if err = fn(sx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %v after: %w", rbErr, err)
		}

		return fmt.Errorf("transaction: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isKeyViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code == errUniqueViolation && (pqErr.Constraint == "" || pqErr.Constraint == wordsKeyConstraint)
}
