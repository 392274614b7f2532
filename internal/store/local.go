// Package store provides a local SQLite-backed implementation of the
// shortcut platform services, for development and for embedding apps that
// run where no host shortcut store exists.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voicelink/internal/intent"
	"voicelink/internal/shortcut"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// LocalStore implements shortcut.ShortcutStore, shortcut.InteractionDonor
// and shortcut.RelevanceStore against a single SQLite file.
//
// Tables:
//   - shortcuts: the user's created shortcuts (ListAll source)
//   - interactions: one row per donated interaction
//   - relevant_intents: the current relevance candidate set, replaced
//     wholesale by SetRelevant
type LocalStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewLocalStore opens (creating if needed) the SQLite database at path.
func NewLocalStore(path string, logger *zap.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create directory: %v", shortcut.ErrStoreUnavailable, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", shortcut.ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}

	s := &LocalStore{db: db, path: path, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, mapErr(err)
	}

	logger.Debug("local shortcut store opened", zap.String("path", path))
	return s, nil
}

func (s *LocalStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS shortcuts (
			id          TEXT PRIMARY KEY,
			phrase      TEXT NOT NULL,
			kind        TEXT NOT NULL,
			store_name  TEXT NOT NULL DEFAULT '',
			product     TEXT NOT NULL DEFAULT '',
			quantity    INTEGER NOT NULL DEFAULT 0,
			created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS interactions (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			group_id    TEXT NOT NULL,
			store_name  TEXT NOT NULL DEFAULT '',
			product     TEXT NOT NULL DEFAULT '',
			quantity    INTEGER NOT NULL DEFAULT 0,
			donated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS relevant_intents (
			position    INTEGER PRIMARY KEY,
			kind        TEXT NOT NULL,
			store_name  TEXT NOT NULL DEFAULT '',
			product     TEXT NOT NULL DEFAULT '',
			quantity    INTEGER NOT NULL DEFAULT 0,
			phrase      TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// ListAll returns every shortcut the user has created, oldest first.
// Rows with a kind this build does not recognize are skipped.
func (s *LocalStore) ListAll(ctx context.Context) ([]shortcut.VoiceShortcut, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, phrase, kind, store_name, product, quantity
		FROM shortcuts ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []shortcut.VoiceShortcut
	for rows.Next() {
		var (
			id, phrase, kindID string
			storeName, product string
			quantity           int
		)
		if err := rows.Scan(&id, &phrase, &kindID, &storeName, &product, &quantity); err != nil {
			return nil, mapErr(err)
		}

		kind := intent.KindFromIdentifier(kindID)
		if !kind.Valid() {
			s.logger.Warn("skipping shortcut with unknown kind",
				zap.String("id", id), zap.String("kind", kindID))
			continue
		}
		in, err := intent.Build(kind, intent.Parameters{
			Store:    storeName,
			Product:  product,
			Quantity: quantity,
		})
		if err != nil {
			return nil, mapErr(err)
		}

		out = append(out, shortcut.VoiceShortcut{ID: id, Phrase: phrase, Intent: in})
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// Donate records one donated interaction.
func (s *LocalStore) Donate(ctx context.Context, in intent.Intent, groupID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (id, kind, group_id, store_name, product, quantity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), in.Kind.Identifier(), groupID, in.Store, in.Product, in.Quantity)
	if err != nil {
		return mapErr(err)
	}
	return nil
}

// SetRelevant replaces the relevance candidate set with the given intents.
func (s *LocalStore) SetRelevant(ctx context.Context, intents []intent.Intent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM relevant_intents`); err != nil {
		return mapErr(err)
	}
	for i, in := range intents {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO relevant_intents (position, kind, store_name, product, quantity, phrase)
			VALUES (?, ?, ?, ?, ?, ?)`,
			i, in.Kind.Identifier(), in.Store, in.Product, in.Quantity, in.Phrase)
		if err != nil {
			return mapErr(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return mapErr(err)
	}
	return nil
}

// AddShortcut creates a shortcut row, standing in for the user creating one
// in the host "add voice shortcut" UI. An empty phrase defaults to the
// intent's resolved phrase. Returns the created handle.
func (s *LocalStore) AddShortcut(ctx context.Context, in intent.Intent, phrase string) (shortcut.VoiceShortcut, error) {
	if phrase == "" {
		phrase = in.Phrase
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shortcuts (id, phrase, kind, store_name, product, quantity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, phrase, in.Kind.Identifier(), in.Store, in.Product, in.Quantity)
	if err != nil {
		return shortcut.VoiceShortcut{}, mapErr(err)
	}
	return shortcut.VoiceShortcut{ID: id, Phrase: phrase, Intent: in}, nil
}

// RemoveShortcut deletes a shortcut row, standing in for the user deleting
// the shortcut in the host UI.
func (s *LocalStore) RemoveShortcut(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shortcuts WHERE id = ?`, id)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrShortcutNotFound, id)
	}
	return nil
}

// Interaction is one recorded donation.
type Interaction struct {
	ID      string
	GroupID string
	Intent  intent.Intent
}

// Interactions returns all recorded donations, oldest first.
func (s *LocalStore) Interactions(ctx context.Context) ([]Interaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, group_id, store_name, product, quantity
		FROM interactions ORDER BY donated_at, id`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var (
			id, kindID, groupID string
			storeName, product  string
			quantity            int
		)
		if err := rows.Scan(&id, &kindID, &groupID, &storeName, &product, &quantity); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, Interaction{
			ID:      id,
			GroupID: groupID,
			Intent: intent.Intent{
				Kind:     intent.KindFromIdentifier(kindID),
				Store:    storeName,
				Product:  product,
				Quantity: quantity,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// RelevantIntents returns the current relevance candidate set in order.
func (s *LocalStore) RelevantIntents(ctx context.Context) ([]intent.Intent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, store_name, product, quantity, phrase
		FROM relevant_intents ORDER BY position`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []intent.Intent
	for rows.Next() {
		var (
			kindID, storeName, product, phrase string
			quantity                           int
		)
		if err := rows.Scan(&kindID, &storeName, &product, &quantity, &phrase); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, intent.Intent{
			Kind:     intent.KindFromIdentifier(kindID),
			Store:    storeName,
			Product:  product,
			Quantity: quantity,
			Phrase:   phrase,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// Path returns the database file path (the watcher watches this).
func (s *LocalStore) Path() string {
	return s.path
}

// mapErr folds driver errors into the shortcut error taxonomy.
func mapErr(err error) error {
	msg := strings.ToLower(err.Error())
	if os.IsPermission(err) || strings.Contains(msg, "readonly") || strings.Contains(msg, "permission denied") {
		return fmt.Errorf("%w: %v", shortcut.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", shortcut.ErrStoreUnavailable, err)
}
