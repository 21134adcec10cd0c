package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/automode"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/balancemode"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/config"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/drive"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/joystick"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/pausemode"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/teleopmode"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision/limelight"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/vision/tapefinder"
)

var CLI struct {
	Config   string `help:"Config file." default:"/cfg/drivetrain.yaml" type:"path"`
	Sim      bool   `help:"Drive a simulated robot instead of the hardware."`
	Joystick string `help:"Joystick device." default:"${joystick_device}" env:"JOYSTICK_DEVICE"`
	LogLevel string `help:"Overrides the configured log level."`
}

type Mode interface {
	Name() string
	Start(ctx context.Context)
	Stop()
}

type JoystickUser interface {
	OnJoystickEvent(event *joystick.Event)
}

func main() {
	kong.Parse(&CLI,
		kong.Description("Drivetrain controller."),
		kong.Vars{"joystick_device": joystick.DefaultDevice},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Println("Failed to load config:", err)
		os.Exit(1)
	}
	if CLI.LogLevel != "" {
		cfg.Log.Level = CLI.LogLevel
	}
	logger, err := log.New(cfg.Log.Level, cfg.Log.Dir)
	if err != nil {
		fmt.Println("Failed to set up logging:", err)
		os.Exit(1)
	}
	logger.Infof("---- Drivetrain ----")
	logger.Infof("GOMAXPROCS %d", runtime.GOMAXPROCS(0))
	if err := cfg.WriteInUse(CLI.Config); err != nil {
		logger.Warnf("Failed to record config in use: %v", err)
	}

	// Our global context, we cancel it to trigger shutdown.
	ctx, cancel := context.WithCancel(context.Background())

	// Hook Ctrl-C etc.
	registerSignalHandlers(cancel, logger)

	var hw hardware.Interface
	if CLI.Sim {
		hw = hardware.NewSim(logger)
	} else {
		hw = hardware.New(cfg.Hardware, newVisionSource(cfg.Vision, logger), logger)
	}
	defer func() {
		logger.Infof("Zeroing motors for shut down")
		hw.Shutdown()
	}()
	hw.Start(ctx)

	d := drive.New(cfg.Drive, hw.Drivebase(), logger)

	// Wait for the joystick and kick off a background thread to read from it.
	joystickEvents := initJoystick(ctx, cancel, CLI.Joystick, logger)

	allModes := []Mode{
		teleopmode.New(cfg.Teleop, d, logger),
		automode.New(cfg.Auto, d, logger),
		balancemode.New(d, logger),
		pausemode.New(d),
	}
	activeModeIdx := 0
	activeMode := allModes[activeModeIdx]
	logger.Infof("----- %s -----", activeMode.Name())
	activeMode.Start(ctx)

	switchMode := func(delta int) {
		logger.Infof("Mode switch %d", delta)
		// The old mode's loop must be gone before the next one touches the
		// drivetrain.
		activeMode.Stop()
		activeModeIdx = (activeModeIdx + delta + len(allModes)) % len(allModes)
		activeMode = allModes[activeModeIdx]
		logger.Infof("----- %s -----", activeMode.Name())
		activeMode.Start(ctx)
	}

	watchdog := time.NewTicker(5 * time.Second)
	defer watchdog.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Context done, stopping active mode and shutting down")
			activeMode.Stop()
			return
		case event, ok := <-joystickEvents:
			if !ok {
				logger.Errorf("Joystick events channel closed!")
				activeMode.Stop()
				cancel()
				return
			}
			// Intercept Options and Share to implement mode switching.
			if event.Type == joystick.EventTypeButton && event.Value == 1 {
				switch event.Number {
				case joystick.ButtonOptions:
					switchMode(1)
					continue
				case joystick.ButtonShare:
					switchMode(-1)
					continue
				}
			}
			// Pass other joystick events through if this mode requires them.
			if ju, ok := activeMode.(JoystickUser); ok {
				done := make(chan struct{})
				go func() {
					defer close(done)
					ju.OnJoystickEvent(event)
				}()
				timeout := time.NewTimer(1 * time.Second)
				select {
				case <-done:
					timeout.Stop()
				case <-timeout.C:
					// Modes only queue the event for their loop; blocking
					// this long means a deadlock.
					panic("Deadlock? Active mode blocked OnJoystickEvent for >1s")
				}
			}
		case <-watchdog.C:
			logger.Debugf("Main loop still running")
		}
	}
}

func newVisionSource(cfg vision.Config, logger log.Logger) hardware.VisionSource {
	switch cfg.Source {
	case vision.SourceLimelight:
		return limelight.New(cfg.Limelight.Endpoint, cfg.Limelight.Topic, cfg.StaleAfter, logger)
	case vision.SourceTapeFinder:
		return tapefinder.New(cfg.TapeFinder, cfg.StaleAfter, logger)
	case vision.SourceNone, "":
		return nil
	}
	logger.Warnf("Unknown vision source %q; running without vision", cfg.Source)
	return nil
}

func initJoystick(ctx context.Context, cancel context.CancelFunc, device string, logger log.Logger) chan *joystick.Event {
	joystickEvents := make(chan *joystick.Event, 1)
	firstLog := true
	for ctx.Err() == nil {
		j, err := joystick.NewJoystick(device)
		if err != nil {
			if firstLog {
				logger.Warnf("Waiting for joystick: %v", err)
				firstLog = false
			}
			time.Sleep(1 * time.Second)
			continue
		}

		logger.Infof("Opened joystick %s", device)
		go func() {
			defer cancel()
			err := loopReadingJoystickEvents(ctx, j, joystickEvents, logger)
			logger.Errorf("Joystick failed: %v", err)
		}()
		break
	}
	return joystickEvents
}

func registerSignalHandlers(cancelFunc context.CancelFunc, logger log.Logger) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		logger.Infof("Signal: %v", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}

func loopReadingJoystickEvents(ctx context.Context, j *joystick.Joystick, events chan *joystick.Event, logger log.Logger) error {
	defer close(events)
	defer j.Close()
	for ctx.Err() == nil {
		event, err := j.ReadEvent()
		if err != nil {
			return err
		}
		logger.Debugf("Joy: %s", event)
		events <- event
	}
	return ctx.Err()
}
