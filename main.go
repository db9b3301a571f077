package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "focusdesk/app/configs"
	"focusdesk/app/core/agent"
	"focusdesk/app/core/alarm"
	"focusdesk/app/core/assistant"
	"focusdesk/app/core/conversation"
	"focusdesk/app/core/dataproxy"
	"focusdesk/app/core/db"
	"focusdesk/app/core/dispatch"
	"focusdesk/app/core/goals"
	"focusdesk/app/core/googleapi"
	"focusdesk/app/core/interaction/cli"
	"focusdesk/app/core/interaction/gateway"
	httpchannel "focusdesk/app/core/interaction/http"
	"focusdesk/app/core/kanban"
	"focusdesk/app/core/notify"
	"focusdesk/app/core/queue"
	"focusdesk/app/core/schedule"
	"focusdesk/app/core/scheduler"
	"focusdesk/app/core/timer"
	"focusdesk/app/pkg/logger"
)

func main() {
	validatePath := flag.String("validate", "", "validate a config file and print the normalized result")
	flag.Parse()

	if *validatePath != "" {
		cfg, err := config.LoadConfigFile(*validatePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config invalid: %v\n", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Println(string(out))
		return
	}

	if err := logger.Init("output/logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("FocusDesk starting...")

	cfgManager, err := config.NewManager(config.DefaultPath())
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	database, err := db.NewSQLiteDB("output/db")
	if err != nil {
		logger.Error("Failed to initialize DB: %v", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("Database initialized successfully")

	convStore := conversation.NewStore(database)
	bus := notify.NewBus()

	proxy := dataproxy.NewClient(
		cfg.Proxy.BaseURL,
		os.Getenv(cfg.Proxy.AuthTokenEnv),
		time.Duration(cfg.Proxy.TimeoutSec)*time.Second,
	)
	google := googleapi.NewClient(
		cfg.Google.BaseURL,
		func() string { return os.Getenv(cfg.Google.AccessTokenEnv) },
		time.Duration(cfg.Google.TimeoutSec)*time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writeQueue := queue.New(64)
	if err := writeQueue.Start(ctx, 2); err != nil {
		logger.Error("Failed to start write queue: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := writeQueue.Stop(5 * time.Second); err != nil {
			logger.Error("Write queue shutdown: %v", err)
		}
	}()

	goalSvc := goals.NewService(google, bus)
	kanbanSvc := kanban.NewService(proxy, bus)
	scheduleSvc := schedule.NewService(proxy, google, bus, schedule.SyncOptions{
		RangeDays:        cfg.Sync.RangeDays,
		DefaultStartTime: cfg.Sync.DefaultStartTime,
		DefaultEndTime:   cfg.Sync.DefaultEndTime,
	})
	timerEngine := timer.NewEngine(timer.Defaults{
		SessionLength: cfg.Timer.SessionLength,
		ShortBreak:    cfg.Timer.ShortBreak,
		LongBreak:     cfg.Timer.LongBreak,
		CustomMinutes: cfg.Timer.CustomMinutes,
	}, bus)

	// Alarm persistence goes through the write queue so a slow proxy never
	// delays the 1Hz scan loop.
	alarmSvc := alarm.NewService(bus,
		func(a alarm.ManualAlarm) {
			doc, err := json.Marshal(a)
			if err != nil {
				logger.Error("Encode alarm %s: %v", a.ID, err)
				return
			}
			_, err = writeQueue.Enqueue(queue.Job{
				MaxRetries:     2,
				RetryDelay:     2 * time.Second,
				AttemptTimeout: 10 * time.Second,
				Run: func(jobCtx context.Context) error {
					return proxy.UpsertWithID(jobCtx, dataproxy.CollectionAlarms, a.ID, doc)
				},
			})
			if err != nil {
				logger.Error("Enqueue alarm write: %v", err)
			}
		},
		func(id string) {
			_, err := writeQueue.Enqueue(queue.Job{
				MaxRetries:     2,
				RetryDelay:     2 * time.Second,
				AttemptTimeout: 10 * time.Second,
				Run: func(jobCtx context.Context) error {
					return proxy.Delete(jobCtx, dataproxy.CollectionAlarms, id)
				},
			})
			if err != nil {
				logger.Error("Enqueue alarm delete: %v", err)
			}
		},
	)

	executor := dispatch.NewExecutor(&dispatch.HandlerTable{
		OpenPage: func(_ context.Context, page string) error {
			bus.Publish(notify.Event{Topic: notify.TopicOpenPage, Detail: page})
			return nil
		},
		CreateTask:              goalSvc.Create,
		DeleteTask:              goalSvc.Delete,
		CreateKanbanItem:        kanbanSvc.Create,
		MoveKanbanItem:          kanbanSvc.Move,
		CreateSchedule:          scheduleSvc.Create,
		AddActivitiesToSchedule: scheduleSvc.AddActivities,
		SetAlarm: func(_ context.Context, enabled bool, minutes int) error {
			alarmSvc.SetWatchdog(enabled, minutes)
			return nil
		},
		CreateManualAlarm: func(_ context.Context, title string, minutes int) error {
			alarmSvc.CreateManual(title, minutes)
			return nil
		},
		StartTimer: func(_ context.Context, minutes int) error {
			timerEngine.Start(minutes)
			return nil
		},
		PauseTimer: func(context.Context) error {
			timerEngine.Pause()
			return nil
		},
		StopTimer: func(context.Context) error {
			timerEngine.Stop()
			return nil
		},
		SetTimerMode: func(_ context.Context, mode string, start bool) error {
			timerEngine.SetMode(mode, start)
			return nil
		},
		ToggleTimerLoop: func(_ context.Context, enabled bool) error {
			timerEngine.ToggleLoop(enabled)
			return nil
		},
		LoadYouTubeVideo: func(_ context.Context, url string) error {
			bus.Publish(notify.Event{Topic: notify.TopicYouTube, Detail: url})
			return nil
		},
	})

	model := assistant.NewClient(
		os.Getenv(cfg.Assistant.APIKeyEnv),
		cfg.Assistant.BaseURL,
		cfg.Assistant.Model,
		cfg.Assistant.HistoryWindow,
		time.Duration(cfg.Assistant.RequestTimeout)*time.Second,
	)

	brain := agent.New(cfg.Agent.Name, model, convStore, executor, agent.ContextSources{
		Tasks:     goalSvc.Snapshot,
		Kanban:    kanbanSvc.Snapshot,
		Schedules: scheduleSvc.Snapshot,
	})

	gw := gateway.NewGateway(brain)
	if tracer, err := gateway.NewTraceRecorder("output/trace"); err != nil {
		logger.Error("Trace recorder unavailable: %v", err)
	} else {
		gw.SetTraceRecorder(tracer)
	}

	// One shared beat drives the focus timer countdown and both alarm scans.
	beat := scheduler.New(time.Second)
	if err := beat.Register("timer-tick", func(context.Context) error {
		timerEngine.Tick()
		return nil
	}); err != nil {
		logger.Error("Failed to register timer hook: %v", err)
		os.Exit(1)
	}
	if err := beat.Register("alarm-scan", func(context.Context) error {
		alarmSvc.Scan()
		return nil
	}); err != nil {
		logger.Error("Failed to register alarm hook: %v", err)
		os.Exit(1)
	}

	cliChannel := cli.NewCLIChannel(cfg.Agent.CLIUserID)
	gw.RegisterChannel(cliChannel)

	httpChannel := httpchannel.NewHTTPChannel(cfg.Server.Port, bus)
	httpChannel.SetResponseTimeout(time.Duration(cfg.Assistant.RequestTimeout+10) * time.Second)
	httpChannel.SetStatusProvider(func(context.Context) map[string]interface{} {
		return map[string]interface{}{
			"gateway":   gw.HealthStatus(),
			"queue":     writeQueue.Stats(),
			"timer":     timerEngine.State(),
			"alarm":     alarmSvc.Watchdog(),
			"heartbeat": beat.Snapshot(),
		}
	})
	gw.RegisterChannel(httpChannel)

	if err := beat.Start(ctx); err != nil {
		logger.Error("Failed to start heartbeat: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := beat.Stop(3 * time.Second); err != nil {
			logger.Error("Heartbeat shutdown timeout: %v", err)
		}
	}()

	go func() {
		if err := gw.Start(ctx); err != nil {
			logger.Error("Gateway crashed: %v", err)
			os.Exit(1)
		}
	}()

	logger.Info("FocusDesk is ready to serve.")
	fmt.Println("- CLI Interface:  Interactive")
	fmt.Printf("- Chat API:       http://localhost:%d/api/chat (POST)\n", cfg.Server.Port)
	fmt.Printf("- Event Stream:   http://localhost:%d/api/events (GET)\n", cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal: %v. FocusDesk shutting down...", sig)
	cancel()
}
