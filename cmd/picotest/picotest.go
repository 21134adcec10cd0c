package main

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/picobldc"
)

var CLI struct {
	Bus   string  `help:"I2C bus device." default:"/dev/i2c-1"`
	Speed float64 `help:"Output fraction to run every motor at." default:"0.1"`
}

func main() {
	kong.Parse(&CLI)
	fmt.Println("Pico-BLDC test program")
	logger := log.NewWriter(logrus.StandardLogger().Out, logrus.DebugLevel)

	pico, err := picobldc.New(CLI.Bus, logger)
	if err != nil {
		panic(err)
	}
	defer pico.Close()
	fmt.Println("Created PicoBLDC object. Enabling watchdog...")

	if err := pico.SetWatchdog(time.Second); err != nil {
		panic(err)
	}
	fmt.Println("Watchdog enabled.")

	tracker := picobldc.NewDistanceTracker(pico)
	speeds := picobldc.PerMotorVal[float64]{CLI.Speed, CLI.Speed, CLI.Speed, CLI.Speed}
	for {
		_ = pico.SetMotorSpeeds(speeds)
		if err := tracker.Poll(); err != nil {
			fmt.Println("Failed to read distances:", err)
		}
		battV, _ := pico.BattVolts()
		status, _ := pico.Status()
		fmt.Printf("%.2fV Status=%x Rotations=%.2f\n", battV, status, tracker.AccumulatedRotations())
		time.Sleep(500 * time.Millisecond)
	}
}
