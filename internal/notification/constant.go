package notification

import (
	"time"

	"parent-care-assistant/internal/model"
)

// SubjectNotificationCreated is the broker subject for queued reminders.
const SubjectNotificationCreated = "care.notification.created"

const (
	// DedupWindow is how far back existing reminders suppress a new one.
	DedupWindow = 24 * time.Hour
	// CallIncompleteAfter is how long a call may stay open before it is reported.
	CallIncompleteAfter = time.Hour
)

const (
	titleActionDue      = "할 일 알림"
	titleCallIncomplete = "통화 미완료"
	titlePeriodic       = "연락해 보세요"
)

// Title returns the user-facing heading for a reminder kind.
func Title(t model.NotificationType) string {
	switch t {
	case model.NotificationActionDue:
		return titleActionDue
	case model.NotificationCallIncomplete:
		return titleCallIncomplete
	case model.NotificationPeriodic:
		return titlePeriodic
	}
	return string(t)
}
