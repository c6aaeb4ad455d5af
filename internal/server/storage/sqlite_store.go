package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/server/storage/migrations"
)

// SQLiteStore keeps one table per record type. Updates rewrite the session's
// rows inside an immediate transaction guarded by the version column.
type SQLiteStore struct {
	db *sql.DB
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// OpenSQLite opens (or creates) a SQLite database and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, st *game.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sess := st.Session
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, version, current_turn, max_turns, status, turn_started_at,
		   turn_timer_seconds, starting_points, free_rooms_enabled, resolution, created_at)
		 VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.CurrentTurn, sess.MaxTurns, string(sess.Status), nullableMillis(sess.TurnStartedAt),
		sess.TurnTimerSeconds, sess.StartingPoints, sess.FreeRoomsEnabled, string(sess.Resolution), toMillis(sess.CreatedAt),
	)
	if err != nil {
		if isConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	if err := insertRecords(ctx, tx, st); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	st.Version = 1
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*game.State, error) {
	return loadState(ctx, s.db, sessionID)
}

func (s *SQLiteStore) Update(ctx context.Context, sessionID string, fn MutateFunc) (*game.State, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	st, err := loadState(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	expected := st.Version
	if err := fn(st); err != nil {
		return nil, err
	}
	st.Version = expected + 1

	sess := st.Session
	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET version = ?, current_turn = ?, max_turns = ?, status = ?, turn_started_at = ?,
		   turn_timer_seconds = ?, starting_points = ?, free_rooms_enabled = ?, resolution = ?
		 WHERE id = ? AND version = ?`,
		st.Version, sess.CurrentTurn, sess.MaxTurns, string(sess.Status), nullableMillis(sess.TurnStartedAt),
		sess.TurnTimerSeconds, sess.StartingPoints, sess.FreeRoomsEnabled, string(sess.Resolution),
		sessionID, expected,
	)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	} else if n == 0 {
		return nil, ErrConflict
	}

	if err := deleteRecords(ctx, tx, sessionID); err != nil {
		return nil, err
	}
	if err := insertRecords(ctx, tx, st); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteRecords(ctx, tx, sessionID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLiteStore) SessionOf(ctx context.Context, playerID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT session_id FROM players WHERE id = ?`, playerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup player: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) ActiveSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions WHERE status != ? ORDER BY id`, string(game.StatusFinished))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

func nullableMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func deleteRecords(ctx context.Context, tx *sql.Tx, sessionID string) error {
	for _, table := range []string{"effects", "cards", "choices", "players", "doors", "rooms"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, st *game.State) error {
	id := st.Session.ID
	for _, r := range st.Rooms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (session_id, id, x, y, points_cost, door_count, is_start, is_exit, is_visited)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, r.ID, r.X, r.Y, r.PointsCost, r.DoorCount, r.IsStart, r.IsExit, r.IsVisited,
		); err != nil {
			return fmt.Errorf("insert room %d: %w", r.ID, err)
		}
	}
	for _, d := range st.Doors {
		var openedBy sql.NullString
		if d.OpenedBy != nil {
			openedBy = sql.NullString{String: *d.OpenedBy, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO doors (session_id, id, room_id, direction, capacity, capacity_turn, opened_by, happiness_modifier)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, d.ID, d.RoomID, string(d.Direction), d.Capacity, d.CapacityTurn, openedBy, d.HappinessModifier,
		); err != nil {
			return fmt.Errorf("insert door %d: %w", d.ID, err)
		}
	}
	for i, p := range st.Players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO players (session_id, id, position, name, points, happiness, happiness_positive,
			   happiness_negative, current_room_id, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, p.ID, i, p.Name, p.Points, p.Happiness, p.HappinessPositive,
			p.HappinessNegative, p.CurrentRoomID, string(p.Status), toMillis(p.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert player %s: %w", p.ID, err)
		}
	}
	for i, c := range st.Choices {
		var doorID sql.NullInt64
		if c.DoorID != nil {
			doorID = sql.NullInt64{Int64: int64(*c.DoorID), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO choices (session_id, position, player_id, turn, door_id, moves) VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, c.PlayerID, c.Turn, doorID, c.Moves,
		); err != nil {
			return fmt.Errorf("insert choice: %w", err)
		}
	}
	for i, c := range st.Cards {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cards (session_id, id, position, player_id, kind, used, used_at, used_turn)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.ID, i, c.PlayerID, string(c.Kind), c.Used, nullableMillis(c.UsedAt), c.UsedTurn,
		); err != nil {
			return fmt.Errorf("insert card %s: %w", c.ID, err)
		}
	}
	for i, e := range st.Effects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO effects (session_id, position, card_id, kind, player_id, turn, value, room_id, points_after)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, e.CardID, string(e.Kind), e.PlayerID, e.Turn, e.Value, e.RoomID, e.PointsAfter,
		); err != nil {
			return fmt.Errorf("insert effect: %w", err)
		}
	}
	return nil
}

func loadState(ctx context.Context, q queryer, sessionID string) (*game.State, error) {
	st := &game.State{}
	sess := &st.Session

	var (
		status, resolution string
		startedAt          sql.NullInt64
		createdAt          int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, version, current_turn, max_turns, status, turn_started_at, turn_timer_seconds,
		   starting_points, free_rooms_enabled, resolution, created_at
		 FROM sessions WHERE id = ?`, sessionID,
	).Scan(&sess.ID, &st.Version, &sess.CurrentTurn, &sess.MaxTurns, &status, &startedAt, &sess.TurnTimerSeconds,
		&sess.StartingPoints, &sess.FreeRoomsEnabled, &resolution, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess.Status = game.SessionStatus(status)
	sess.Resolution = game.Resolution(resolution)
	sess.CreatedAt = fromMillis(createdAt)
	if startedAt.Valid {
		t := fromMillis(startedAt.Int64)
		sess.TurnStartedAt = &t
	}

	loaders := []func(context.Context, queryer, *game.State) error{
		loadRooms, loadDoors, loadPlayers, loadChoices, loadCards, loadEffects,
	}
	for _, load := range loaders {
		if err := load(ctx, q, st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func loadRooms(ctx context.Context, q queryer, st *game.State) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, x, y, points_cost, door_count, is_start, is_exit, is_visited
		 FROM rooms WHERE session_id = ? ORDER BY id`, st.Session.ID)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		r := &game.Room{}
		if err := rows.Scan(&r.ID, &r.X, &r.Y, &r.PointsCost, &r.DoorCount, &r.IsStart, &r.IsExit, &r.IsVisited); err != nil {
			return fmt.Errorf("scan room: %w", err)
		}
		st.Rooms = append(st.Rooms, r)
	}
	return rows.Err()
}

func loadDoors(ctx context.Context, q queryer, st *game.State) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, room_id, direction, capacity, capacity_turn, opened_by, happiness_modifier
		 FROM doors WHERE session_id = ? ORDER BY id`, st.Session.ID)
	if err != nil {
		return fmt.Errorf("load doors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d := &game.Door{}
		var (
			direction string
			openedBy  sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.RoomID, &direction, &d.Capacity, &d.CapacityTurn, &openedBy, &d.HappinessModifier); err != nil {
			return fmt.Errorf("scan door: %w", err)
		}
		d.Direction = game.Direction(direction)
		if openedBy.Valid {
			v := openedBy.String
			d.OpenedBy = &v
		}
		st.Doors = append(st.Doors, d)
	}
	return rows.Err()
}

func loadPlayers(ctx context.Context, q queryer, st *game.State) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, points, happiness, happiness_positive, happiness_negative, current_room_id, status, created_at
		 FROM players WHERE session_id = ? ORDER BY position`, st.Session.ID)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p := &game.Player{}
		var (
			status    string
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Points, &p.Happiness, &p.HappinessPositive, &p.HappinessNegative,
			&p.CurrentRoomID, &status, &createdAt); err != nil {
			return fmt.Errorf("scan player: %w", err)
		}
		p.Status = game.PlayerStatus(status)
		p.CreatedAt = fromMillis(createdAt)
		st.Players = append(st.Players, p)
	}
	return rows.Err()
}

func loadChoices(ctx context.Context, q queryer, st *game.State) error {
	rows, err := q.QueryContext(ctx,
		`SELECT player_id, turn, door_id, moves FROM choices WHERE session_id = ? ORDER BY position`, st.Session.ID)
	if err != nil {
		return fmt.Errorf("load choices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c := &game.Choice{}
		var doorID sql.NullInt64
		if err := rows.Scan(&c.PlayerID, &c.Turn, &doorID, &c.Moves); err != nil {
			return fmt.Errorf("scan choice: %w", err)
		}
		if doorID.Valid {
			v := int(doorID.Int64)
			c.DoorID = &v
		}
		st.Choices = append(st.Choices, c)
	}
	return rows.Err()
}

func loadCards(ctx context.Context, q queryer, st *game.State) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, player_id, kind, used, used_at, used_turn FROM cards WHERE session_id = ? ORDER BY position`, st.Session.ID)
	if err != nil {
		return fmt.Errorf("load cards: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c := &game.Card{}
		var (
			kind   string
			usedAt sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.PlayerID, &kind, &c.Used, &usedAt, &c.UsedTurn); err != nil {
			return fmt.Errorf("scan card: %w", err)
		}
		c.Kind = game.CardKind(kind)
		if usedAt.Valid {
			t := fromMillis(usedAt.Int64)
			c.UsedAt = &t
		}
		st.Cards = append(st.Cards, c)
	}
	return rows.Err()
}

func loadEffects(ctx context.Context, q queryer, st *game.State) error {
	rows, err := q.QueryContext(ctx,
		`SELECT card_id, kind, player_id, turn, value, room_id, points_after
		 FROM effects WHERE session_id = ? ORDER BY position`, st.Session.ID)
	if err != nil {
		return fmt.Errorf("load effects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		e := &game.Effect{}
		var kind string
		if err := rows.Scan(&e.CardID, &kind, &e.PlayerID, &e.Turn, &e.Value, &e.RoomID, &e.PointsAfter); err != nil {
			return fmt.Errorf("scan effect: %w", err)
		}
		e.Kind = game.CardKind(kind)
		st.Effects = append(st.Effects, e)
	}
	return rows.Err()
}
