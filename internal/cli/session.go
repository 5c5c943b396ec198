package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/villegasmiguelangel268-maker/listify/internal/backup"
	"github.com/villegasmiguelangel268-maker/listify/internal/config"
	"github.com/villegasmiguelangel268-maker/listify/internal/database"
	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/store"
)

// session is a loaded grocery list plus the database behind it, if any.
type session struct {
	mgr *grocery.Manager
	db  *sql.DB
}

func (s *session) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// open builds the manager and loads the stored list. Without a database
// path the list lives in memory for the life of the process.
func (app *App) open(ctx context.Context) (*session, error) {
	opts := []grocery.Option{
		grocery.WithLogger(app.logger.With("component", "grocery")),
		grocery.WithAutoCategorize(app.cfg.AutoCategorize),
	}

	s := &session{}
	if app.cfg.Persistent() {
		db, err := database.Open(app.cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		s.db = db
		if v, err := database.SchemaVersion(ctx, db); err == nil {
			app.logger.Debug("database opened", "path", app.cfg.DBPath, "schema_version", v)
		}
		opts = append(opts, grocery.WithPersister(store.NewGroceryStore(db)))
	}

	s.mgr = grocery.NewManager(grocery.NewMemStore(), opts...)
	if err := s.mgr.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// backupManager wires encrypted S3 backups for the session's list. The
// manager reports ErrDisabled from every operation when storage is not
// configured.
func (app *App) backupManager(s *session) *backup.Manager {
	var history *store.BackupStore
	if s.db != nil {
		history = store.NewBackupStore(s.db)
	}
	logger := app.logger.With("component", "backup")
	return backup.NewManager(backupConfig(app.cfg.Backup), s.mgr, history, func(st backup.Status) {
		logger.Debug("backup status", "state", st.State, "in_progress", st.InProgress)
	}, logger)
}

func backupConfig(c config.BackupConfig) backup.Config {
	return backup.Config{
		S3: backup.S3Config{
			Endpoint:  c.S3Endpoint,
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		},
		Passphrase: c.Passphrase,
		Schedule:   c.Schedule,
		Retention:  c.Retention,
	}
}
