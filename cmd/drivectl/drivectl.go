package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/config"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/drive"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/hardware"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
)

// Flags for the binary itself; the commands typed at the prompt are parsed
// separately.
var Flags struct {
	Config string `help:"Config file." default:"/cfg/drivetrain.yaml" type:"path"`
	Sim    bool   `help:"Drive a simulated robot instead of the hardware."`
}

var CLI struct {
	Quit   QuitCmd   `cmd:"" help:"Stop and quit."`
	Stop   StopCmd   `cmd:"" help:"Stop the motors."`
	Tank   TankCmd   `cmd:"" help:"Tank drive at fixed outputs."`
	Arcade ArcadeCmd `cmd:"" help:"Arcade drive at fixed outputs."`
	Auto   AutoCmd   `cmd:"" help:"Drive a distance using the position controllers."`
	Reset  ResetCmd  `cmd:"" help:"Zero the encoders."`
	Bal    BalCmd    `cmd:"" name:"balance" help:"Level the robot."`
	Status StatusCmd `cmd:"" help:"Print the sensors."`
}

// An action runs once per cycle on the control loop until replaced.
type action func(d *drive.Drivetrain)

type Context struct {
	actions chan action
	oneShot chan action
}

func (c *Context) set(a action) {
	c.actions <- a
}

func (c *Context) do(a action) {
	done := make(chan struct{})
	c.oneShot <- func(d *drive.Drivetrain) {
		defer close(done)
		a(d)
	}
	<-done
}

type QuitCmd struct{}

func (q *QuitCmd) Run(ctx *Context) error {
	return Quit
}

var Quit = errors.New("Quit")

type StopCmd struct{}

func (c *StopCmd) Run(ctx *Context) error {
	ctx.set(nil)
	return nil
}

type TankCmd struct {
	Left  float64 `arg:""`
	Right float64 `arg:""`
}

func (c *TankCmd) Run(ctx *Context) error {
	ctx.set(func(d *drive.Drivetrain) { d.TankDrive(c.Left, c.Right) })
	return nil
}

type ArcadeCmd struct {
	Forward float64 `arg:""`
	Turn    float64 `arg:""`
}

func (c *ArcadeCmd) Run(ctx *Context) error {
	ctx.set(func(d *drive.Drivetrain) { d.ArcadeDrive(c.Forward, c.Turn) })
	return nil
}

type AutoCmd struct {
	Meters float64 `arg:""`
}

func (c *AutoCmd) Run(ctx *Context) error {
	ctx.do(func(d *drive.Drivetrain) { d.ResetEncoders() })
	reported := false
	ctx.set(func(d *drive.Drivetrain) {
		if d.DistanceReached(c.Meters) {
			if !reported {
				fmt.Printf("Reached %.2fm\n", c.Meters)
				reported = true
			}
			return
		}
		d.AutoDrive(c.Meters)
	})
	return nil
}

type ResetCmd struct{}

func (c *ResetCmd) Run(ctx *Context) error {
	ctx.do(func(d *drive.Drivetrain) { d.ResetEncoders() })
	return nil
}

type BalCmd struct{}

func (c *BalCmd) Run(ctx *Context) error {
	ctx.do(func(d *drive.Drivetrain) { d.ResetBalance() })
	ctx.set(func(d *drive.Drivetrain) { d.AutoBalance() })
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	ctx.do(func(d *drive.Drivetrain) {
		s := d.Snapshot()
		fmt.Printf("Encoders L:%.2f R:%.2f  Pitch:%.2f Yaw:%.2f Roll:%.2f\n",
			s.LeftEncoder, s.RightEncoder, s.Pitch, s.Yaw, s.Roll)
		fmt.Printf("Target visible:%v X:%.2f Y:%.2f  aligned yaw:%v pitch:%v\n",
			s.Target.Visible, s.Target.X, s.Target.Y, d.AlignedToTapeYaw(), d.AlignedToTapePitch())
		fmt.Printf("Balance gain:%v level:%v\n", d.ProportionalGain(), d.BalanceComplete())
	})
	return nil
}

func main() {
	kong.Parse(&Flags)
	fmt.Println("---- drivectl ----")

	cfg, err := config.Load(Flags.Config)
	if err != nil {
		panic(err)
	}
	logger, err := log.New(cfg.Log.Level, "")
	if err != nil {
		panic(err)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hw hardware.Interface
	if Flags.Sim {
		hw = hardware.NewSim(logger)
	} else {
		hw = hardware.New(cfg.Hardware, nil, logger)
	}
	hw.Start(bgCtx)
	defer hw.Shutdown()

	d := drive.New(cfg.Drive, hw.Drivebase(), logger)
	ctx := &Context{
		actions: make(chan action),
		oneShot: make(chan action),
	}
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		controlLoop(bgCtx, d, ctx)
	}()

	k, err := kong.New(&CLI)
	if err != nil {
		panic(err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("Enter a command:")
		if !scanner.Scan() {
			break
		}
		command := strings.TrimSpace(scanner.Text())
		if command == "" {
			continue
		}
		parsed, err := k.Parse(strings.Fields(command))
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		err = parsed.Run(ctx)
		if err == Quit {
			break
		} else if err != nil {
			fmt.Println("ERROR:", err)
			continue
		}
	}
	cancel()
	<-loopDone
}

func controlLoop(ctx context.Context, d *drive.Drivetrain, c *Context) {
	defer d.Stop()

	var current action
	ticker := time.NewTicker(d.Config().CyclePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-c.actions:
			// Every change of action starts from rest with fresh limiters.
			current = a
			d.Stop()
		case a := <-c.oneShot:
			a(d)
		case <-ticker.C:
			d.Refresh()
			if current != nil {
				current(d)
			}
		}
	}
}
