package redisx

import (
	"fmt"
	"time"
)

const (
	// Unread notification count per user: notif:unread:{uid} -> int
	keyUnreadCount = "notif:unread:%s"
)

// TTLUnreadCount bounds staleness when an invalidation is lost.
var TTLUnreadCount = 30 * time.Second

func KeyUnreadCount(userUID string) string {
	return fmt.Sprintf(keyUnreadCount, userUID)
}
