package main

import (
	"context"

	api "remindkit/cmd/api"
	"remindkit/internal/notification"
	notificationDelivery "remindkit/internal/notification/delivery"
	"remindkit/internal/readout"
	"remindkit/internal/speech"
	speechDelivery "remindkit/internal/speech/delivery"
	syncDelivery "remindkit/internal/sync/delivery"
	syncdomain "remindkit/internal/sync/domain"
	syncRepo "remindkit/internal/sync/repository"
	syncScheduler "remindkit/internal/sync/scheduler"
	syncUsecase "remindkit/internal/sync/usecase"
	taskDelivery "remindkit/internal/task/delivery"
	taskRepo "remindkit/internal/task/repository"
	taskUsecase "remindkit/internal/task/usecase"
	"remindkit/pkg/config"
	"remindkit/pkg/database"
	"remindkit/pkg/fcm"
	"remindkit/pkg/firebase"
	"remindkit/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	// Initialize the embedded local store
	db, err := database.NewSQLiteConnection(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open local database")
	}

	localStore, err := taskRepo.NewGormLocalStore(db)
	if err != nil {
		log.WithError(err).Fatal("failed to migrate task store")
	}
	snapshotStore, err := readout.NewGormSnapshotStore(db)
	if err != nil {
		log.WithError(err).Fatal("failed to migrate readout snapshots")
	}

	// Remote store and push delivery. Without Firebase configuration the
	// app runs fully offline against an in-memory remote.
	var remoteStore syncRepo.RemoteStore
	var fcmClient *fcm.Client
	if cfg.FirebaseProjectID != "" {
		ctx := context.Background()
		app, err := firebase.NewApp(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize Firebase")
		}
		fsClient, err := firebase.NewFirestore(ctx, app)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize Firestore")
		}
		remoteStore = syncRepo.NewFirestoreRemoteStore(fsClient)

		fcmClient, err = fcm.NewClient(ctx, app)
		if err != nil {
			log.WithError(err).Warn("FCM unavailable, push notifications disabled")
			fcmClient = nil
		}
	} else {
		log.Warn("no Firebase project configured, running offline")
		remoteStore = syncRepo.NewMemoryRemoteStore()
	}

	// Use cases
	syncUc := syncUsecase.NewSyncUsecase(localStore, remoteStore, log)
	taskUc := taskUsecase.NewTaskUsecase(localStore, log)
	taskUc.SetPusher(syncUc)

	// Repeat readout
	speaker := speech.NewLogSpeaker(log)
	readoutCtrl := readout.NewController(readout.NewRealClock(), speaker, snapshotStore, readout.Options{
		Interval:    cfg.ReadoutInterval,
		CapDuration: cfg.ReadoutCapDuration,
		CapCount:    cfg.ReadoutCapCount,
	}, log)

	// Notification delivery and scheduling
	notifService := notification.NewService(localStore, taskUc, readoutCtrl, fcmClient, cfg.FCMTopicPrefix, cfg.SnoozeDuration, log)
	platform := notification.NewTimerPlatform(notifService.HandleFire, log)
	alarmAdapter := notification.NewAdapter(platform, notifService.HandleFire, log)
	taskUc.SetReminderScheduler(alarmAdapter)

	// Records written around the task usecase (pull merges, imports) land
	// in the store directly; follow the change feed so their alarms track
	// too.
	stopAlarmWatch := alarmAdapter.WatchStore(localStore)
	defer stopAlarmWatch()

	// Resume any readout interrupted by a restart, then re-arm alarms for
	// every stored task.
	readoutCtrl.Restore(func(taskID string) string {
		if task, err := localStore.Get(taskID); err == nil && task != nil {
			return "Reminder: " + task.Title
		}
		return "Reminder"
	})
	if tasks, err := localStore.List(); err == nil {
		for _, t := range tasks {
			alarmAdapter.TaskChanged(t)
		}
	}

	// Background pull scheduler for the device's signed-in identity
	deviceSession := syncdomain.Anonymous()
	if cfg.DeviceUserID != "" {
		deviceSession = syncdomain.SignedIn(cfg.DeviceUserID)
	}
	pullScheduler := syncScheduler.NewPullScheduler(syncUc, deviceSession, cfg.SyncPullInterval, log)
	pullScheduler.Start()
	defer pullScheduler.Stop()

	// Voice capture
	voiceUc := speech.NewVoiceUsecase(taskUc, cfg.SpeechMinConfidence, log)
	recognizer := speech.NewRecognizer(cfg.SpeechPrivacyMode)

	// HTTP surface
	handler := api.NewHandler(
		cfg,
		taskDelivery.NewTaskHandler(taskUc),
		syncDelivery.NewSyncHandler(syncUc),
		notificationDelivery.NewNotificationHandler(notifService),
		speechDelivery.NewVoiceHandler(voiceUc, recognizer),
	)

	log.WithField("port", cfg.Port).Info("server starting")
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
