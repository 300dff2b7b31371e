// Package notification maps tasks to opaque platform alarms. The platform
// addresses alarms by 32-bit signed integers, so string task ids are folded
// into a stable derived id used for scheduling, cancellation and
// action-payload correlation.
package notification

import (
	"fmt"
	"time"
)

// Action identifies what the user did with a fired notification
type Action string

const (
	ActionOpen        Action = "open"
	ActionSnooze      Action = "snooze"
	ActionDone        Action = "done"
	ActionStopReadout Action = "stop_readout"
)

// Payload travels with an alarm so a fired notification can be correlated
// back to its task and routed to the readout controller or task usecase.
type Payload struct {
	TaskID         string `json:"taskId"`
	DerivedAlarmID int32  `json:"derivedAlarmId"`
	Action         Action `json:"action"`
}

// AlarmPlatform is the external notification-delivery boundary
type AlarmPlatform interface {
	// Schedule arms the alarm. A fire time the platform cannot honor (for
	// example already in the past) returns a *ScheduleError.
	Schedule(alarmID int32, fireAt time.Time, payload Payload) error

	// Cancel disarms the alarm; unknown ids are a no-op
	Cancel(alarmID int32)
}

// ScheduleError reports a platform rejection. The adapter reacts with an
// immediate fire instead of dropping the reminder.
type ScheduleError struct {
	AlarmID int32
	FireAt  time.Time
	Reason  string
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("alarm %d at %s rejected: %s", e.AlarmID, e.FireAt.Format(time.RFC3339), e.Reason)
}
