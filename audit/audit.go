// Package audit records handled commands in an SQLite database.
package audit

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/bourse/message"
	"github.com/zephyrtronium/bourse/userhash"
)

// Entry is a record of one handled command.
type Entry struct {
	// Time is the time the command was received.
	Time time.Time
	// Platform and Channel identify where the command was received.
	Platform message.Platform
	Channel  string
	// User is the userhash of the sender.
	User userhash.Hash
	// Command is the command name.
	Command string
	// Outcome is the name of the dispatch outcome.
	Outcome string
	// Cost is the time spent handling the command.
	Cost time.Duration
	// Trace is the trace ID of the request.
	Trace string
}

//go:embed schema.sql
var schemaSQL string

func conn[DB *sqlitex.Pool | *sqlite.Conn](ctx context.Context, db DB) (*sqlite.Conn, func(), error) {
	switch db := any(db).(type) {
	case *sqlite.Conn:
		return db, func() {}, nil
	case *sqlitex.Pool:
		conn, err := db.Take(ctx)
		if err != nil {
			return nil, nil, err
		}
		return conn, func() { db.Put(conn) }, nil
	default:
		panic("unreachable")
	}
}

// Init initializes an SQLite DB to record commands.
func Init[DB *sqlitex.Pool | *sqlite.Conn](ctx context.Context, db DB) error {
	conn, put, err := conn(ctx, db)
	if err != nil {
		return fmt.Errorf("couldn't get conn to initialize audit log: %w", err)
	}
	defer put()
	if err := sqlitex.ExecuteScript(conn, schemaSQL, nil); err != nil {
		return fmt.Errorf("couldn't initialize audit schema: %w", err)
	}
	return nil
}

// Record adds an entry to the audit log.
func Record[DB *sqlitex.Pool | *sqlite.Conn](ctx context.Context, db DB, e *Entry) error {
	conn, put, err := conn(ctx, db)
	if err != nil {
		return fmt.Errorf("couldn't get conn to record command: %w", err)
	}
	defer put()
	const insert = `INSERT INTO audit (time, platform, channel, user, command, outcome, cost, trace) VALUES (:time, :platform, :channel, :user, :command, :outcome, :cost, :trace)`
	st, err := conn.Prepare(insert)
	if err != nil {
		return fmt.Errorf("couldn't prepare statement to record command: %w", err)
	}
	st.SetInt64(":time", e.Time.UnixNano())
	st.SetText(":platform", string(e.Platform))
	st.SetText(":channel", e.Channel)
	st.SetBytes(":user", e.User[:])
	st.SetText(":command", e.Command)
	st.SetText(":outcome", e.Outcome)
	st.SetInt64(":cost", e.Cost.Nanoseconds())
	st.SetText(":trace", e.Trace)
	if _, err := st.Step(); err != nil {
		return fmt.Errorf("couldn't record command: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recent entries, newest first.
func Recent[DB *sqlitex.Pool | *sqlite.Conn](ctx context.Context, db DB, n int) ([]Entry, error) {
	conn, put, err := conn(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("couldn't get conn to read audit log: %w", err)
	}
	defer put()
	var r []Entry
	opts := sqlitex.ExecOptions{
		Named: map[string]any{":n": n},
		ResultFunc: func(st *sqlite.Stmt) error {
			e := Entry{
				Time:     time.Unix(0, st.ColumnInt64(0)),
				Platform: message.Platform(st.ColumnText(1)),
				Channel:  st.ColumnText(2),
				Command:  st.ColumnText(4),
				Outcome:  st.ColumnText(5),
				Cost:     time.Duration(st.ColumnInt64(6)),
				Trace:    st.ColumnText(7),
			}
			st.ColumnBytes(3, e.User[:])
			r = append(r, e)
			return nil
		},
	}
	const sel = `SELECT time, platform, channel, user, command, outcome, cost, trace FROM audit ORDER BY time DESC LIMIT :n`
	if err := sqlitex.Execute(conn, sel, &opts); err != nil {
		return nil, fmt.Errorf("couldn't read audit log: %w", err)
	}
	return r, nil
}

// Counts returns the number of entries per outcome since a given time.
func Counts[DB *sqlitex.Pool | *sqlite.Conn](ctx context.Context, db DB, since time.Time) (map[string]int, error) {
	conn, put, err := conn(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("couldn't get conn to count outcomes: %w", err)
	}
	defer put()
	r := make(map[string]int)
	opts := sqlitex.ExecOptions{
		Named: map[string]any{":since": since.UnixNano()},
		ResultFunc: func(st *sqlite.Stmt) error {
			r[st.ColumnText(0)] = st.ColumnInt(1)
			return nil
		},
	}
	const sel = `SELECT outcome, COUNT(*) FROM audit WHERE time >= :since GROUP BY outcome`
	if err := sqlitex.Execute(conn, sel, &opts); err != nil {
		return nil, fmt.Errorf("couldn't count outcomes: %w", err)
	}
	return r, nil
}
