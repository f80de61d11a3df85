package message

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"uk.co.dudmesh.inbound/internal/model"
	"uk.co.dudmesh.inbound/internal/store"
)

type Config interface {
	store.Config
}

type Store interface {
	Create(ctx context.Context, message *model.Message) (model.InsertResult, error)
	Query(ctx context.Context, filter model.MessageFilter, limit int, offset int) ([]model.Message, int, error)
	Stats(ctx context.Context) (*model.Stats, error)
	Ping(ctx context.Context) error
	Close() error
}

type service struct {
	store    Store
	validate *validator.Validate
}

func New(config Config) (*service, error) {
	messageStore, err := store.NewMessageStore(config)
	if err != nil {
		return nil, fmt.Errorf("creating message store: %w", err)
	}
	return NewWithStore(messageStore), nil
}

func NewWithStore(store Store) *service {
	return &service{
		store:    store,
		validate: newValidator(),
	}
}

func (s *service) Close() error {
	return s.store.Close()
}

func (s *service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Ingest stores the payload once per message id. A repeated id is reported as
// model.InsertResultDuplicate, not as an error.
func (s *service) Ingest(ctx context.Context, params *model.IngestParams) (model.InsertResult, error) {
	if params == nil {
		return 0, fmt.Errorf("%w: missing payload", model.ErrorInvalidInput)
	}
	if err := s.validate.StructCtx(ctx, params); err != nil {
		return 0, invalidInput(err)
	}
	ts := params.TS.UTC()
	if !storable(ts) {
		return 0, fmt.Errorf("%w: ts out of range", model.ErrorInvalidInput)
	}

	message := &model.Message{
		ID:        model.MessageID(params.MessageID),
		Sender:    params.From,
		Recipient: params.To,
		Timestamp: ts,
		Text:      params.Text,
	}

	result, err := s.store.Create(ctx, message)
	if err != nil {
		return 0, fmt.Errorf("creating message %s: %w", message.ID, err)
	}

	return result, nil
}

// List returns one page of messages in timestamp, id order. limit and offset
// out of range are rejected rather than clamped.
func (s *service) List(ctx context.Context, params model.ListParams) (*model.Page, error) {
	if err := s.validate.StructCtx(ctx, params); err != nil {
		return nil, invalidInput(err)
	}
	if since := params.Filter.Since; since != nil && !storable(since.UTC()) {
		return nil, fmt.Errorf("%w: since out of range", model.ErrorInvalidInput)
	}

	messages, total, err := s.store.Query(ctx, params.Filter, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}

	return &model.Page{
		Data:   messages,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

func (s *service) Stats(ctx context.Context) (*model.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	return stats, nil
}

// storable reports whether ts fits the four digit year of store.TimestampLayout.
func storable(ts time.Time) bool {
	return ts.Year() >= 1 && ts.Year() <= 9999
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return validate
}

func invalidInput(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", model.ErrorInvalidInput, err)
	}

	problems := lo.Map(validationErrors, func(fieldError validator.FieldError, _ int) string {
		if fieldError.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", fieldError.Field(), fieldError.Tag(), fieldError.Param())
		}
		return fmt.Sprintf("%s failed %s", fieldError.Field(), fieldError.Tag())
	})
	return fmt.Errorf("%w: %s", model.ErrorInvalidInput, strings.Join(problems, ", "))
}
