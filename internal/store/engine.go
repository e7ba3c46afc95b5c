package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/GonzoDMX/uridx/internal/config"
	"github.com/GonzoDMX/uridx/internal/embed"
	"github.com/GonzoDMX/uridx/internal/models"
	"github.com/GonzoDMX/uridx/internal/uerr"
)

// dsn appends the WAL-mode pragmas the teacher's server process used for
// its own sqlite connections, adapted for a single-writer/many-readers
// workload (§5 concurrency model).
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", path)
}

// Engine owns the physical sqlite connection and the single-writer lock
// that serializes write transactions (§5). Only WithWriteTx takes wmu,
// so it serializes writers against each other; readers never take it.
type Engine struct {
	db  *sql.DB
	wmu sync.Mutex

	EmbedModel string
	Dimension  int
}

func init() {
	sqlite_vec.Auto()
}

// Open bootstraps or attaches to the database at path. On first open
// (no settings row for embed_dimension) it asks client for model's
// dimension, creates the schema including the vec0 table sized to that
// dimension, and persists both embed_model and embed_dimension. On
// subsequent opens it enforces I3 by refusing to proceed if the
// provider's current dimension for model disagrees with what was
// persisted (§7 ConfigError, §8 scenario 5).
func Open(ctx context.Context, path string, model string, client embed.Client) (*Engine, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, uerr.NewConfigError("apply relational schema", err)
	}

	e := &Engine{db: db, EmbedModel: model}

	dimStr, found, err := e.getSetting(ctx, models.SettingEmbedDimension)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read embed_dimension setting: %w", err)
	}

	if !found {
		dim, err := client.Dimension(ctx, model)
		if err != nil {
			db.Close()
			return nil, uerr.NewConfigError("probe embedding dimension on first bootstrap", err)
		}
		if _, err := db.ExecContext(ctx, vecSchemaSQL(dim)); err != nil {
			db.Close()
			return nil, uerr.NewConfigError("create vector index", err)
		}
		if err := e.putSetting(ctx, models.SettingEmbedModel, model); err != nil {
			db.Close()
			return nil, err
		}
		if err := e.putSetting(ctx, models.SettingEmbedDimension, fmt.Sprintf("%d", dim)); err != nil {
			db.Close()
			return nil, err
		}
		e.Dimension = dim
		return e, nil
	}

	var persisted int
	if _, err := fmt.Sscanf(dimStr, "%d", &persisted); err != nil {
		db.Close()
		return nil, uerr.NewConfigError("parse persisted embed_dimension", err)
	}

	current, err := client.Dimension(ctx, model)
	if err != nil {
		db.Close()
		return nil, uerr.NewConfigError("probe embedding dimension on open", err)
	}
	if err := config.CheckDimension(persisted, current); err != nil {
		db.Close()
		return nil, uerr.NewConfigError("dimension check", err)
	}

	if _, err := db.ExecContext(ctx, vecSchemaSQL(persisted)); err != nil {
		db.Close()
		return nil, uerr.NewConfigError("attach vector index", err)
	}

	e.Dimension = persisted
	return e, nil
}

// Close releases the underlying connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// DB exposes the raw connection for packages (ingest, retriever) that
// need to build their own statements or transactions against it.
func (e *Engine) DB() *sql.DB {
	return e.db
}

// Lock acquires the single-writer lock for the duration of a write
// transaction (§5). Callers must call Unlock when done.
func (e *Engine) Lock()   { e.wmu.Lock() }
func (e *Engine) Unlock() { e.wmu.Unlock() }

// WithWriteTx runs fn inside a transaction while holding the writer
// lock, committing on success and rolling back on any error or panic.
func (e *Engine) WithWriteTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	e.Lock()
	defer e.Unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
