package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"remindkit/internal/readout"
	syncdomain "remindkit/internal/sync/domain"
	taskdomain "remindkit/internal/task/domain"
	"remindkit/internal/task/repository"

	"remindkit/pkg/fcm"
)

// TaskActions is the slice of task business logic the service routes
// notification interactions into.
type TaskActions interface {
	Complete(session syncdomain.Session, taskID string) (*taskdomain.Task, error)
	Snooze(session syncdomain.Session, taskID string, until time.Time) (*taskdomain.Task, error)
}

// ReadoutControl is the slice of the readout controller the service drives
type ReadoutControl interface {
	Start(taskID string, opts readout.Options)
	Stop(taskID string)
}

// Service delivers fired alarms to the user (push notification plus repeat
// readout) and routes interaction actions back to the task logic.
type Service struct {
	store       repository.LocalStore
	actions     TaskActions
	readout     ReadoutControl
	fcmClient   *fcm.Client
	topicPrefix string
	snoozeFor   time.Duration
	log         *logrus.Entry
}

// NewService creates the fire/action router. fcmClient may be nil; delivery
// then degrades to readout only.
func NewService(store repository.LocalStore, actions TaskActions, readout ReadoutControl, fcmClient *fcm.Client, topicPrefix string, snoozeFor time.Duration, log *logrus.Logger) *Service {
	if snoozeFor <= 0 {
		snoozeFor = 10 * time.Minute
	}
	return &Service{
		store:       store,
		actions:     actions,
		readout:     readout,
		fcmClient:   fcmClient,
		topicPrefix: topicPrefix,
		snoozeFor:   snoozeFor,
		log:         log.WithField("component", "notification"),
	}
}

// HandleFire runs when an alarm fires: push the notification and begin the
// repeat readout for the task.
func (s *Service) HandleFire(payload Payload) {
	task, err := s.store.Get(payload.TaskID)
	if err != nil || task == nil || task.Deleted {
		s.log.WithField("taskId", payload.TaskID).Warn("fired alarm for missing task, ignoring")
		return
	}
	if task.IsCompleted {
		return
	}

	text := "Reminder: " + task.Title
	if s.fcmClient != nil {
		data := map[string]string{
			"taskId":         payload.TaskID,
			"derivedAlarmId": fmt.Sprintf("%d", payload.DerivedAlarmID),
			"action":         string(payload.Action),
		}
		notif := fcm.NotificationData{Title: text, Body: task.Notes, Data: data}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.fcmClient.SendToTopic(ctx, s.topicPrefix+task.OwnerID, notif); err != nil {
			s.log.WithField("taskId", payload.TaskID).WithError(err).Warn("push delivery failed")
		}
	}

	if s.readout != nil {
		s.readout.Start(task.ID, readout.Options{Text: text})
	}
}

// HandleAction routes a user interaction with a fired notification
func (s *Service) HandleAction(session syncdomain.Session, payload Payload) error {
	switch payload.Action {
	case ActionOpen:
		// Opening the app is presentation-layer territory; nothing to do.
		return nil
	case ActionDone:
		if s.readout != nil {
			s.readout.Stop(payload.TaskID)
		}
		_, err := s.actions.Complete(session, payload.TaskID)
		return err
	case ActionSnooze:
		if s.readout != nil {
			s.readout.Stop(payload.TaskID)
		}
		_, err := s.actions.Snooze(session, payload.TaskID, time.Now().Add(s.snoozeFor))
		return err
	case ActionStopReadout:
		if s.readout != nil {
			s.readout.Stop(payload.TaskID)
		}
		return nil
	default:
		return fmt.Errorf("unknown notification action %q", payload.Action)
	}
}
