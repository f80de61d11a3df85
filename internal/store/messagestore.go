package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"uk.co.dudmesh.inbound/internal/model"
)

// TimestampLayout is fixed width and zero padded so that comparing stored
// timestamps as text agrees with chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

const topSenders = 10

type Config interface {
	DatabaseURL() string
}

type messageStore struct {
	db  *sqlx.DB
	now func() time.Time
}

type messageRow struct {
	MessageID string         `db:"message_id"`
	Sender    string         `db:"sender"`
	Recipient string         `db:"recipient"`
	TS        string         `db:"ts"`
	Text      sql.NullString `db:"text"`
	CreatedAt string         `db:"created_at"`
}

type totalsRow struct {
	Total   int            `db:"total"`
	Senders int            `db:"senders"`
	FirstTS sql.NullString `db:"first_ts"`
	LastTS  sql.NullString `db:"last_ts"`
}

func NewMessageStore(config Config) (*messageStore, error) {
	db, err := sqlx.Connect(driverName, dsn(config.DatabaseURL()))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if config.DatabaseURL() == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	store := &messageStore{db: db, now: time.Now}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *messageStore) createTables() error {
	_, err := s.db.Exec(`create table if not exists messages (
		message_id text not null primary key,
		sender     text not null,
		recipient  text not null,
		ts         text not null,
		text       text null,
		created_at text not null
	)`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	_, err = s.db.Exec(`create index if not exists messages_ts on messages (ts, message_id)`)
	if err != nil {
		return fmt.Errorf("creating ts index: %w", err)
	}

	_, err = s.db.Exec(`create index if not exists messages_sender_ts on messages (sender, ts, message_id)`)
	if err != nil {
		return fmt.Errorf("creating sender index: %w", err)
	}

	return nil
}

func (s *messageStore) Close() error {
	return s.db.Close()
}

func (s *messageStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storageError("pinging database", err)
	}
	return nil
}

// Create inserts message unless its id is already stored. The primary key
// decides the winner, so concurrent creates of one id yield exactly one
// InsertResultCreated. An existing row is never modified.
func (s *messageStore) Create(ctx context.Context, message *model.Message) (model.InsertResult, error) {
	createdAt := s.now().UTC()
	row := fromMessage(message)
	row.CreatedAt = createdAt.Format(TimestampLayout)

	res, err := s.db.NamedExecContext(ctx, `insert into messages
		(message_id, sender, recipient, ts, text, created_at)
		values(:message_id, :sender, :recipient, :ts, :text, :created_at)
		on conflict(message_id) do nothing`, row)
	if err != nil {
		return 0, storageError("inserting message", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, storageError("getting rows affected", err)
	}
	if rows == 0 {
		return model.InsertResultDuplicate, nil
	}

	message.CreatedAt = createdAt
	return model.InsertResultCreated, nil
}

// Query returns the window [offset, offset+limit) of the messages matching
// filter, ordered by timestamp then id, and the total number of matches.
// limit and offset are used as given.
func (s *messageStore) Query(ctx context.Context, filter model.MessageFilter, limit int, offset int) ([]model.Message, int, error) {
	where, args := whereClause(filter)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, storageError("starting read transaction", err)
	}
	defer tx.Rollback()

	var total int
	err = tx.GetContext(ctx, &total, `select count(*) from messages`+where, args...)
	if err != nil {
		return nil, 0, storageError("counting messages", err)
	}

	pageArgs := append(append([]interface{}{}, args...), limit, offset)
	rows := []messageRow{}
	err = tx.SelectContext(ctx, &rows, `select message_id, sender, recipient, ts, text, created_at
		from messages`+where+`
		order by ts asc, message_id asc
		limit ? offset ?`, pageArgs...)
	if err != nil {
		return nil, 0, storageError("selecting messages", err)
	}

	messages := make([]model.Message, 0, len(rows))
	for _, row := range rows {
		message, err := row.toMessage()
		if err != nil {
			return nil, 0, storageError("decoding message", err)
		}
		messages = append(messages, *message)
	}

	return messages, total, nil
}

// Stats aggregates over every stored message. Senders with equal counts are
// ranked by sender ascending.
func (s *messageStore) Stats(ctx context.Context) (*model.Stats, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageError("starting read transaction", err)
	}
	defer tx.Rollback()

	totals := totalsRow{}
	err = tx.GetContext(ctx, &totals, `select
		count(*) as total,
		count(distinct sender) as senders,
		min(ts) as first_ts,
		max(ts) as last_ts
		from messages`)
	if err != nil {
		return nil, storageError("aggregating messages", err)
	}

	perSender := []model.SenderCount{}
	err = tx.SelectContext(ctx, &perSender, `select sender, count(*) as message_count
		from messages
		group by sender
		order by message_count desc, sender asc
		limit ?`, topSenders)
	if err != nil {
		return nil, storageError("counting messages per sender", err)
	}

	stats := &model.Stats{
		TotalMessages:     totals.Total,
		SendersCount:      totals.Senders,
		MessagesPerSender: perSender,
	}
	if stats.FirstMessageTS, err = parseNullTimestamp(totals.FirstTS); err != nil {
		return nil, storageError("decoding first timestamp", err)
	}
	if stats.LastMessageTS, err = parseNullTimestamp(totals.LastTS); err != nil {
		return nil, storageError("decoding last timestamp", err)
	}

	return stats, nil
}

func whereClause(filter model.MessageFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	if filter.Sender != "" {
		clauses = append(clauses, "sender = ?")
		args = append(args, filter.Sender)
	}
	if filter.Since != nil {
		clauses = append(clauses, "ts >= ?")
		args = append(args, filter.Since.UTC().Format(TimestampLayout))
	}
	if filter.Q != "" {
		// instr matches literally, unlike like with its % and _ wildcards
		clauses = append(clauses, "instr(casefold(coalesce(text, '')), casefold(?)) > 0")
		args = append(args, filter.Q)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " where " + strings.Join(clauses, " and "), args
}

func fromMessage(message *model.Message) *messageRow {
	return &messageRow{
		MessageID: string(message.ID),
		Sender:    message.Sender,
		Recipient: message.Recipient,
		TS:        message.Timestamp.UTC().Format(TimestampLayout),
		Text:      sql.NullString{String: lo.FromPtr(message.Text), Valid: message.Text != nil},
	}
}

func (r *messageRow) toMessage() (*model.Message, error) {
	ts, err := time.Parse(TimestampLayout, r.TS)
	if err != nil {
		return nil, fmt.Errorf("parsing ts of %s: %w", r.MessageID, err)
	}
	createdAt, err := time.Parse(TimestampLayout, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", r.MessageID, err)
	}

	message := &model.Message{
		ID:        model.MessageID(r.MessageID),
		Sender:    r.Sender,
		Recipient: r.Recipient,
		Timestamp: ts,
		CreatedAt: createdAt,
	}
	if r.Text.Valid {
		message.Text = lo.ToPtr(r.Text.String)
	}
	return message, nil
}

func parseNullTimestamp(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	ts, err := time.Parse(TimestampLayout, value.String)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func storageError(action string, err error) error {
	return fmt.Errorf("%s: %w: %w", action, model.ErrorStorage, err)
}
