package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"wordclock.ai/internal/clock"
	"wordclock.ai/internal/config"
	"wordclock.ai/internal/overlay"
)

// Settings keys. The section and key names match the settings page of the
// clock firmware so exported stores stay interchangeable.
const (
	SettingsSection = "Wordclock"
	KeyActive       = "active"
	KeyWordColor    = "word color (RRGGBB)"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropMinuteTotal atomic.Uint64
}

type reqKind int

const (
	reqMinute reqKind = iota + 1
)

type req struct {
	kind   reqKind
	minute clock.MinuteEntry
}

// IndexStats reports writer queue health for /metrics.
type IndexStats struct {
	QueueDepth      int
	QueueCapacity   int
	DropMinuteTotal uint64
}

// MinuteRow is one row of the minutes table.
type MinuteRow struct {
	ID        int64    `json:"id"`
	Time      string   `json:"time"`
	BootID    string   `json:"boot_id"`
	Hour      int      `json:"hour"`
	Minute    int      `json:"minute"`
	Text      string   `json:"text"`
	Words     []string `json:"words"`
	Lit       int      `json:"lit"`
	Active    bool     `json:"active"`
	WordColor string   `json:"word_color"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			section TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (section, key)
		);`,
		`CREATE TABLE IF NOT EXISTS minutes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time TEXT NOT NULL,
			boot_id TEXT NOT NULL,
			hour INTEGER NOT NULL,
			minute INTEGER NOT NULL,
			text TEXT NOT NULL,
			words_json TEXT NOT NULL,
			lit INTEGER NOT NULL,
			active INTEGER NOT NULL,
			word_color TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_minutes_face ON minutes(hour, minute);`,
		`CREATE INDEX IF NOT EXISTS idx_minutes_boot ON minutes(boot_id, id);`,
		`INSERT OR IGNORE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordMinute queues e for the minutes table. It never blocks; entries are
// dropped when the writer falls behind (the JSONL log remains the source of
// truth).
func (s *SQLiteIndex) RecordMinute(e clock.MinuteEntry) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqMinute, minute: e}:
	default:
		s.dropMinuteTotal.Add(1)
	}
}

func (s *SQLiteIndex) Stats() IndexStats {
	if s == nil {
		return IndexStats{}
	}
	return IndexStats{
		QueueDepth:      len(s.ch),
		QueueCapacity:   cap(s.ch),
		DropMinuteTotal: s.dropMinuteTotal.Load(),
	}
}

// LoadSettings reads the Wordclock section. Missing or unparsable values keep
// their fallback value; complete is false unless both keys were stored.
func (s *SQLiteIndex) LoadSettings(ctx context.Context, fallback overlay.Settings) (st overlay.Settings, complete bool, err error) {
	st = fallback
	rows, err := s.db.QueryContext(ctx, `SELECT key,value FROM settings WHERE section=?`, SettingsSection)
	if err != nil {
		return st, false, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	var haveActive, haveColor bool
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return st, false, fmt.Errorf("load settings: %w", err)
		}
		switch k {
		case KeyActive:
			if b, err := strconv.ParseBool(v); err == nil {
				st.Active = b
				haveActive = true
			}
		case KeyWordColor:
			if c, err := config.ParseColor(v); err == nil {
				st.Color = c
				haveColor = true
			}
		}
	}
	if err := rows.Err(); err != nil {
		return st, false, fmt.Errorf("load settings: %w", err)
	}
	return st, haveActive && haveColor, nil
}

// SaveSettings writes both keys of the Wordclock section.
func (s *SQLiteIndex) SaveSettings(ctx context.Context, st overlay.Settings) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO settings(section,key,value,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	defer stmt.Close()
	kv := [][2]string{
		{KeyActive, strconv.FormatBool(st.Active)},
		{KeyWordColor, st.Color.Hex()},
	}
	for _, p := range kv {
		if _, err := stmt.ExecContext(ctx, SettingsSection, p[0], p[1], now); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// RecentMinutes returns the newest rows first.
func (s *SQLiteIndex) RecentMinutes(ctx context.Context, limit int) ([]MinuteRow, error) {
	return QueryMinutes(ctx, s.db, limit)
}

// QueryMinutes reads the newest rows of the minutes table from any handle on
// the index database.
func QueryMinutes(ctx context.Context, db *sql.DB, limit int) ([]MinuteRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `SELECT id,time,boot_id,hour,minute,text,words_json,lit,active,word_color FROM minutes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MinuteRow
	for rows.Next() {
		var (
			r      MinuteRow
			words  string
			active int
		)
		if err := rows.Scan(&r.ID, &r.Time, &r.BootID, &r.Hour, &r.Minute, &r.Text, &words, &r.Lit, &active, &r.WordColor); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(words), &r.Words); err != nil {
			return nil, fmt.Errorf("minute %d words: %w", r.ID, err)
		}
		r.Active = active != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

var errNoTx = errors.New("indexdb: no transaction")

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertMinute, _ := s.db.Prepare(`INSERT INTO minutes(time,boot_id,hour,minute,text,words_json,lit,active,word_color) VALUES(?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertMinute != nil {
			_ = insertMinute.Close()
		}
	}()

	var (
		tx          *sql.Tx
		opCount     int
		commitEvery = 256
	)

	begin := func() error {
		if tx != nil {
			return nil
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return errNoTx
		}
		tx = txx
		opCount = 0
		return nil
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
	}

	for r := range s.ch {
		if err := begin(); err != nil {
			continue
		}
		switch r.kind {
		case reqMinute:
			m := r.minute
			words, _ := json.Marshal(m.Words)
			active := 0
			if m.Active {
				active = 1
			}
			if insertMinute != nil {
				if _, err := tx.Stmt(insertMinute).Exec(m.Time, m.BootID, m.Hour, m.Minute, m.Text, string(words), m.Lit, active, m.WordColor); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		// The connection is shared with settings reads; never hold the tx
		// while the queue is idle.
		if opCount >= commitEvery || len(s.ch) == 0 {
			commit()
		}
	}

	commit()
}
