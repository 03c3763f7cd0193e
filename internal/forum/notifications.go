package forum

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stackit/internal/auth"
	"stackit/internal/models"
	"stackit/internal/store"
)

type NotificationService struct {
	store    *store.Client
	realtime *store.Realtime
	log      zerolog.Logger
}

func NewNotificationService(st *store.Client, rt *store.Realtime, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		store:    st,
		realtime: rt,
		log:      log.With().Str("component", "notifications").Logger(),
	}
}

// Notify writes an unread notification into the target user's list.
func (s *NotificationService) Notify(ctx context.Context, userID, message string, typ models.NotificationType) error {
	notification := models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   message,
		Type:      typ,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.From("notifications").Insert(ctx, notification, nil); err != nil {
		return &RemoteError{Op: "write notification", Err: err}
	}
	return nil
}

// List returns the caller's own notifications, newest first.
func (s *NotificationService) List(ctx context.Context, ident *auth.Identity) ([]models.Notification, error) {
	if ident == nil {
		return nil, ErrAuthenticationRequired
	}

	var notifications []models.Notification
	err := s.store.From("notifications").
		Eq("user_id", ident.ID).
		Order("created_at", false).
		Get(ctx, &notifications)
	if err != nil {
		return nil, &RemoteError{Op: "list notifications", Err: err}
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// MarkRead flips one notification to read. The update is scoped to the
// caller's own list, so a foreign id patches nothing and reports not found.
// read never transitions back to false.
func (s *NotificationService) MarkRead(ctx context.Context, ident *auth.Identity, notificationID string) error {
	if ident == nil {
		return ErrAuthenticationRequired
	}

	patched, err := s.store.From("notifications").
		Eq("id", notificationID).
		Eq("user_id", ident.ID).
		Update(ctx, map[string]any{"read": true})
	if err != nil {
		return &RemoteError{Op: "mark notification read", Err: err}
	}
	if patched == 0 {
		return &NotFoundError{Collection: "notifications", ID: notificationID}
	}
	return nil
}

// Watch delivers the caller's full notification list now and after every
// remote change. Release the returned function on teardown.
func (s *NotificationService) Watch(ctx context.Context, ident *auth.Identity, deliver func([]models.Notification)) (func(), error) {
	if ident == nil {
		return nil, ErrAuthenticationRequired
	}
	if s.realtime == nil {
		return nil, fmt.Errorf("watch notifications: realtime not connected")
	}

	sub, err := s.realtime.Subscribe(ctx, "notifications", "user_id=eq."+ident.ID, func(store.Change) {
		notifications, err := s.List(ctx, ident)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", ident.ID).Msg("notification refresh failed")
			return
		}
		deliver(notifications)
	})
	if err != nil {
		return nil, err
	}

	notifications, err := s.List(ctx, ident)
	if err != nil {
		sub.Unsubscribe()
		return nil, err
	}
	deliver(notifications)

	return sub.Unsubscribe, nil
}
