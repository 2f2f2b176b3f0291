package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/redisx"
	"github.com/rusample/sample-market/internal/repository"
)

type NotificationService interface {
	// Notify is best-effort; failures must not break the order flow
	// that triggered the notification.
	Notify(ctx context.Context, userUID string, kind model.NotificationKind, title, message string, listingID, orderID *uint64)
	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	// MarkRead is idempotent: re-marking an already-read notification
	// is a no-op, not an error.
	MarkRead(ctx context.Context, id uint64, userUID string) error
	MarkAllRead(ctx context.Context, userUID string) error
	UnreadCount(ctx context.Context, userUID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	rdb  *redis.Client // nil disables the unread-count cache
}

func NewNotificationService(repo repository.NotificationRepository, rdb *redis.Client) NotificationService {
	return &notificationService{repo: repo, rdb: rdb}
}

func (s *notificationService) Notify(ctx context.Context, userUID string, kind model.NotificationKind, title, message string, listingID, orderID *uint64) {
	if userUID == "" || kind == "" {
		return
	}
	n := &model.Notification{
		UserUID:   userUID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		ListingID: listingID,
		OrderID:   orderID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return
	}
	s.invalidateUnread(ctx, userUID)
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.UnreadCount(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint64, userUID string) error {
	if userUID == "" {
		return nil
	}
	rows, err := s.repo.MarkRead(ctx, id, userUID)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Either already read (fine) or not this user's notification.
		ok, err := s.repo.Exists(ctx, id, userUID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return nil
	}
	s.invalidateUnread(ctx, userUID)
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	if err := s.repo.MarkAllRead(ctx, userUID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, userUID)
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userUID string) (int64, error) {
	if s.rdb != nil {
		// A miss or cache trouble both fall through to the store.
		if cnt, err := s.rdb.Get(ctx, redisx.KeyUnreadCount(userUID)).Int64(); err == nil {
			return cnt, nil
		}
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return 0, err
	}
	if s.rdb != nil {
		_ = s.rdb.Set(ctx, redisx.KeyUnreadCount(userUID), cnt, redisx.TTLUnreadCount).Err()
	}
	return cnt, nil
}

func (s *notificationService) invalidateUnread(ctx context.Context, userUID string) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, redisx.KeyUnreadCount(userUID)).Err()
}
