// Command stocktank controls a latching solenoid fill valve from a float
// switch and publishes tank state changes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/stocktank/internal/config"
	"github.com/sweeney/stocktank/internal/gpio"
	"github.com/sweeney/stocktank/internal/logic"
	"github.com/sweeney/stocktank/internal/mqtt"
	"github.com/sweeney/stocktank/internal/status"
	"github.com/sweeney/stocktank/internal/tick"
	"github.com/sweeney/stocktank/internal/valve"
	"github.com/sweeney/stocktank/internal/web"
)

const defaultConfigPath = "/etc/stocktank.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Config file path")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config)")
	tickInterval := flag.Duration("tick", 0, "Tick interval (overrides config)")
	printState := flag.Bool("print-state", false, "Print float switch state and exit")
	pulse := flag.String("pulse", "", `Pulse the valve ("open" or "close") and exit`)
	writeConfig := flag.Bool("write-config", false, "Write the effective config to the config path and exit")

	flag.Parse()

	if err := run(*configPath, *broker, *httpAddr, *tickInterval, *printState, *pulse, *writeConfig); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath, brokerOverride, httpOverride string, tickOverride time.Duration, printState bool, pulseDir string, writeConfig bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if brokerOverride != "" {
		cfg.MQTT.Broker = brokerOverride
	}
	if httpOverride != "" {
		cfg.HTTP.Addr = httpOverride
	}
	if tickOverride > 0 {
		cfg.Timing.TickInterval = tickOverride
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if writeConfig {
		if err := cfg.Save(configPath); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("wrote %s\n", configPath)
		return nil
	}

	// Initialize GPIO
	sw, err := gpio.NewRealSwitch(cfg.GPIO.Chip, cfg.GPIO.FloatSwitchPin)
	if err != nil {
		return fmt.Errorf("init float switch: %w", err)
	}
	defer sw.Close()

	// Print state mode
	if printState {
		full, err := sw.Full()
		if err != nil {
			return fmt.Errorf("read float switch: %w", err)
		}
		fmt.Printf("tank: %s\n", levelString(full))
		return nil
	}

	bridge, err := gpio.NewRealBridge(cfg.GPIO.Chip, gpio.BridgePins{
		OpenSelect:  cfg.GPIO.OpenSelectPin,
		CloseSelect: cfg.GPIO.CloseSelectPin,
		Enable:      cfg.GPIO.EnablePin,
		Indicator:   cfg.GPIO.IndicatorPin,
	})
	if err != nil {
		return fmt.Errorf("init h-bridge: %w", err)
	}
	defer bridge.Close()

	solenoid := valve.NewSolenoid(bridge, valve.TimerWaiter{}, cfg.Timing.DrivePulse, cfg.Timing.Decay)

	// Manual pulse mode
	if pulseDir != "" {
		dir, err := parseDirection(pulseDir)
		if err != nil {
			return err
		}
		if err := solenoid.Pulse(dir); err != nil {
			return fmt.Errorf("pulse %s: %w", pulseDir, err)
		}
		fmt.Printf("pulsed %s\n", dir)
		return nil
	}

	// Initialize MQTT (empty broker runs without it)
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		rp := mqtt.NewRealPublisher(cfg.MQTT.Broker)
		defer rp.Close()
		publisher = rp
		mqttStatus = rp
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:        cfg.Timing.TickInterval.Milliseconds(),
		CheckInterval: cfg.Timing.CheckInterval,
		DriveMs:       cfg.Timing.DrivePulse.Milliseconds(),
		DecayMs:       cfg.Timing.Decay.Milliseconds(),
		HeartbeatMs:   cfg.Timing.Heartbeat.Milliseconds(),
		Broker:        cfg.MQTT.Broker,
		HTTPAddr:      cfg.HTTP.Addr,
	})

	// Drive the valve closed so the mechanical state matches IDLE.
	if err := solenoid.Pulse(logic.Close); err != nil {
		return fmt.Errorf("close valve on startup: %w", err)
	}
	log.Printf("valve driven closed")

	if full, err := sw.Full(); err != nil {
		log.Printf("float switch read error: %v", err)
	} else {
		tracker.Update(logic.StateIdle, full, 0, logic.EventCounts{})
	}
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: tick=%v check=%d drive=%v decay=%v broker=%s heartbeat=%v",
		cfg.Timing.TickInterval, cfg.Timing.CheckInterval, cfg.Timing.DrivePulse,
		cfg.Timing.Decay, cfg.MQTT.Broker, cfg.Timing.Heartbeat)

	counter := &tick.Counter{}
	src := tick.NewSource(cfg.Timing.TickInterval, counter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sw, counter, solenoid, publisher, mqttStatus, tracker,
		cfg.Timing.CheckInterval, cfg.Timing.Heartbeat, time.Now, src.Wake(), sigCh)
}

func runLoop(sw gpio.Switch, ticks logic.Ticks, v logic.Valve, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, checkInterval uint32, heartbeat time.Duration, now func() time.Time, wake <-chan struct{}, sig <-chan os.Signal) error {
	startTime := now()
	ctrl := logic.NewController(checkInterval, ticks, v, startTime)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					snap := tracker.Snapshot()
					event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-wake:
			t := now()
			full, err := sw.Full()
			if err != nil {
				log.Printf("float switch read error: %v", err)
				continue
			}

			events, err := ctrl.Evaluate(logic.Input{Full: full, Time: t})
			if err != nil {
				// The state machine has already transitioned; keep running.
				log.Printf("valve error: %v", err)
			}

			for _, event := range events {
				log.Printf("event: %s (state=%s ticks=%d)", event.Type, event.State, event.Ticks)
				if publisher != nil {
					if err := publisher.Publish(event); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
			}

			// Check for heartbeat
			if hbData := ctrl.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v state=%s opened=%d closed=%d faults=%d",
					hbData.Uptime, hbData.State, hbData.Counts.Opened, hbData.Counts.Closed, hbData.Counts.Faults)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					tracker.Update(ctrl.CurrentState(), full, ticks.Count(), ctrl.Counts())
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if publisher != nil {
					if err := publisher.PublishSystem(hbEvent); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(ctrl.CurrentState(), full, ticks.Count(), ctrl.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

func levelString(full bool) string {
	if full {
		return "FULL"
	}
	return "LOW"
}

func parseDirection(s string) (logic.Direction, error) {
	switch s {
	case "open":
		return logic.Open, nil
	case "close":
		return logic.Close, nil
	}
	return "", fmt.Errorf("invalid pulse direction %q (want open or close)", s)
}
