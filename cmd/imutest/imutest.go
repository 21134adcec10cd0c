package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/bno08x"
	"github.com/tigerbot-team/tigerbot/go-drivetrain/pkg/log"
)

var CLI struct {
	Device string `help:"Serial device the IMU is on." default:"/dev/ttyAMA0"`
}

func main() {
	kong.Parse(&CLI)
	logger := log.NewWriter(logrus.StandardLogger().Out, logrus.DebugLevel)

	imu := bno08x.New(CLI.Device, logger)
	go imu.LoopReadingReports(context.Background())
	for {
		rep := imu.CurrentReport()
		fmt.Printf("%v\n", rep)
		fmt.Printf("Pitch %.2f Yaw %.2f (accumulated) Roll %.2f\n", imu.Pitch(), imu.Yaw(), imu.Roll())
		time.Sleep(200 * time.Millisecond)
	}
}
