package model

import "time"

type MessageID string

const (
	DefaultLimit  int = 50
	MaxLimit      int = 100
	MaxTextLength int = 4096
)

type InsertResult int

const (
	InsertResultCreated InsertResult = iota + 1
	InsertResultDuplicate
)

func (r InsertResult) String() string {
	switch r {
	case InsertResultCreated:
		return "created"
	case InsertResultDuplicate:
		return "duplicate"
	}
	return "unknown"
}

// IngestParams is a webhook payload as delivered by the upstream provider.
type IngestParams struct {
	MessageID string    `json:"message_id" validate:"required"`
	From      string    `json:"from" validate:"required"`
	To        string    `json:"to" validate:"required"`
	TS        time.Time `json:"ts" validate:"required"`
	Text      *string   `json:"text" validate:"omitempty,max=4096"`
}

type Message struct {
	ID        MessageID `json:"message_id"`
	Sender    string    `json:"from"`
	Recipient string    `json:"to"`
	Timestamp time.Time `json:"ts"`
	Text      *string   `json:"text"`
	CreatedAt time.Time `json:"-"`
}

// MessageFilter is AND-combined; zero values place no constraint.
type MessageFilter struct {
	Sender string
	Since  *time.Time
	Q      string
}

type ListParams struct {
	Limit  int `json:"limit" validate:"min=1,max=100"`
	Offset int `json:"offset" validate:"min=0"`
	Filter MessageFilter
}

func NewListParams() ListParams {
	return ListParams{Limit: DefaultLimit}
}

type Page struct {
	Data   []Message `json:"data"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

type SenderCount struct {
	Sender string `json:"from" db:"sender"`
	Count  int    `json:"count" db:"message_count"`
}

type Stats struct {
	TotalMessages     int           `json:"total_messages"`
	SendersCount      int           `json:"senders_count"`
	MessagesPerSender []SenderCount `json:"messages_per_sender"`
	FirstMessageTS    *time.Time    `json:"first_message_ts"`
	LastMessageTS     *time.Time    `json:"last_message_ts"`
}
