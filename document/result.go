package document

import (
	"time"

	"wcb/common"
)

// DefaultNotificationDuration is how long a notification stays visible.
const DefaultNotificationDuration = 3 * time.Second

// Notification is user facing message attached to a result.
type Notification struct {
	Type     common.NotificationType `json:"type"`
	Message  string                  `json:"message"`
	Duration time.Duration           `json:"duration"`
}

// Result reports outcome of a structural operation. Expected refusals are
// results, never errors.
type Result struct {
	Success      bool          `json:"success"`
	Notification *Notification `json:"notification,omitempty"`
	// Created holds id of element, class or property the operation added.
	Created string `json:"created,omitempty"`
}

func done() Result {
	return Result{Success: true}
}

func created(id string) Result {
	return Result{Success: true, Created: id}
}

func notify(success bool, typ common.NotificationType, msg string) Result {
	return Result{
		Success:      success,
		Notification: &Notification{Type: typ, Message: msg, Duration: DefaultNotificationDuration},
	}
}

func refused(msg string) Result {
	return notify(false, common.NotificationTypeError, msg)
}

func warned(msg string) Result {
	return notify(true, common.NotificationTypeWarning, msg)
}
