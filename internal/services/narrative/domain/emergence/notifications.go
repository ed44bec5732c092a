package emergence

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/platform/id"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

// NotificationStore is the persistence boundary for notifications.
type NotificationStore interface {
	// InsertNotification persists a new pending row. Implementations
	// return storage.ErrConflict when a pending row already exists for the
	// same (game, entity, type), backing the dedup invariant under races.
	InsertNotification(ctx context.Context, n Notification) error
	GetNotification(ctx context.Context, gameID, notificationID string) (Notification, error)
	// ExistsSimilarNotification reports whether a pending notification
	// already exists for (game, entity, type).
	ExistsSimilarNotification(ctx context.Context, gameID string, entity event.Ref, emergenceType Type) (bool, error)
	// MarkNotificationResolved atomically transitions a pending row to the
	// given terminal status. Implementations return storage.ErrNotFound
	// when no row for the id is still pending.
	MarkNotificationResolved(ctx context.Context, gameID, notificationID string, status NotificationStatus, dmNotes string, resolvedAt time.Time) (Notification, error)
	ListPendingNotifications(ctx context.Context, gameID string, pageSize int, pageToken string) (NotificationPage, error)
}

// NotificationPage is one page of a pending notification listing.
type NotificationPage struct {
	Notifications []Notification
	NextPageToken string
}

// Service owns the notification lifecycle: surface once per (game, entity,
// type) while pending, then acknowledge or dismiss exactly once.
type Service struct {
	store  NotificationStore
	clock  func() time.Time
	newID  func() (string, error)
	tracer trace.Tracer
}

// NewService constructs a notification service over an injected store.
func NewService(store NotificationStore, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:  store,
		clock:  clock,
		newID:  id.NewID,
		tracer: otel.Tracer("tablemind/narrative/emergence"),
	}
}

// Surface turns an opportunity into a pending notification unless a similar
// pending one already exists. The boolean reports whether a notification was
// created; suppression is a normal outcome, not an error. A conflicting
// concurrent insert is treated as suppression.
func (s *Service) Surface(ctx context.Context, opportunity Opportunity) (Notification, bool, error) {
	ctx, span := s.tracer.Start(ctx, "emergence.Surface", trace.WithAttributes(
		attribute.String("game.id", opportunity.GameID),
		attribute.String("emergence.type", string(opportunity.Type)),
	))
	defer span.End()

	if err := opportunity.Validate(); err != nil {
		return Notification{}, false, err
	}

	exists, err := s.store.ExistsSimilarNotification(ctx, opportunity.GameID, opportunity.Entity, opportunity.Type)
	if err != nil {
		return Notification{}, false, err
	}
	if exists {
		span.SetAttributes(attribute.Bool("suppressed", true))
		return Notification{}, false, nil
	}

	notificationID, err := s.newID()
	if err != nil {
		return Notification{}, false, err
	}
	notification := Notification{
		ID:          notificationID,
		GameID:      opportunity.GameID,
		Opportunity: opportunity,
		Status:      NotificationPending,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.store.InsertNotification(ctx, notification); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			span.SetAttributes(attribute.Bool("suppressed", true))
			return Notification{}, false, nil
		}
		return Notification{}, false, err
	}
	return notification, true, nil
}

// Acknowledge resolves a pending notification as accepted by the DM.
func (s *Service) Acknowledge(ctx context.Context, gameID, notificationID, dmNotes string) (Notification, error) {
	return s.resolve(ctx, gameID, notificationID, NotificationAcknowledged, dmNotes)
}

// Dismiss resolves a pending notification as rejected by the DM.
func (s *Service) Dismiss(ctx context.Context, gameID, notificationID, dmNotes string) (Notification, error) {
	return s.resolve(ctx, gameID, notificationID, NotificationDismissed, dmNotes)
}

func (s *Service) resolve(ctx context.Context, gameID, notificationID string, status NotificationStatus, dmNotes string) (Notification, error) {
	if status != NotificationAcknowledged && status != NotificationDismissed {
		return Notification{}, apperrors.WithMetadata(
			apperrors.CodeNotificationStatusInvalid,
			"resolution must be acknowledged or dismissed",
			map[string]string{"status": string(status)},
		)
	}
	return s.store.MarkNotificationResolved(ctx, gameID, notificationID, status, strings.TrimSpace(dmNotes), s.clock().UTC())
}

// Get returns one notification.
func (s *Service) Get(ctx context.Context, gameID, notificationID string) (Notification, error) {
	return s.store.GetNotification(ctx, gameID, notificationID)
}

// ListPending returns a page of the game's pending notifications.
func (s *Service) ListPending(ctx context.Context, gameID string, pageSize int, pageToken string) (NotificationPage, error) {
	return s.store.ListPendingNotifications(ctx, gameID, pageSize, pageToken)
}
