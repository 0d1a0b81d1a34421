// Package service exposes the shop's four components (ingredients, catalog and recipes,
// sales, reports) behind one facade. Mutations return a Result with a user facing
// message next to the Go error; reads log storage faults and degrade to empty data.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"nainai/backend/internal/domain"
	"nainai/backend/internal/recommendation"
	"nainai/backend/internal/store"
)

// ErrInvalidInput covers blank names and other malformed requests.
var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo        store.Repository
	recommender *recommendation.Engine
	location    *time.Location
	now         func() time.Time
	log         *zap.Logger
}

type Option func(*Service)

// WithLocation sets the calendar used for "today" in reports.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger
		}
	}
}

func New(repo store.Repository, recommender *recommendation.Engine, opts ...Option) *Service {
	if recommender == nil {
		recommender = recommendation.NewEngine(nil)
	}

	s := &Service{
		repo:        repo,
		recommender: recommender,
		location:    time.Local,
		now:         time.Now,
		log:         zap.L().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Location() *time.Location {
	return s.location
}

func ok(message string) domain.Result {
	return domain.Result{Success: true, Message: message}
}

// failure turns err into the message shown to the user. entity and name fill the
// not found and duplicate wording.
func (s *Service) failure(op string, err error, entity string, name string) domain.Result {
	var short *store.InsufficientStockError
	switch {
	case errors.As(err, &short):
		return domain.Result{Message: short.Error()}
	case errors.Is(err, store.ErrDuplicateName):
		return domain.Result{Message: fmt.Sprintf("%s '%s' already exists", entity, name)}
	case errors.Is(err, store.ErrNotFound):
		return domain.Result{Message: entity + " not found"}
	case errors.Is(err, store.ErrInvalidQuantity):
		return domain.Result{Message: "quantity must be positive"}
	case errors.Is(err, store.ErrInvalidRecipe):
		return domain.Result{Message: "recipe lists the same ingredient more than once"}
	case errors.Is(err, store.ErrNoRecipe):
		return domain.Result{Message: "product has no recipe and cannot be sold"}
	case errors.Is(err, ErrInvalidInput):
		return domain.Result{Message: strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")}
	default:
		s.log.Error("storage fault", zap.String("op", op), zap.Error(err))
		return domain.Result{Message: storageMessage(err)}
	}
}

func storageMessage(err error) string {
	msg := err.Error()
	if strings.HasPrefix(msg, store.ErrStorage.Error()) {
		return msg
	}
	return store.ErrStorage.Error() + ": " + msg
}

// readFailed logs a read path fault. Callers return empty data.
func (s *Service) readFailed(op string, err error) {
	s.log.Warn("read failed", zap.String("op", op), zap.Error(err))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
