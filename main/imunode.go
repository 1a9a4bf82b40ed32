package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all"
	log "github.com/sirupsen/logrus"
	"github.com/takama/daemon"

	"imunode/icm42688"
	"imunode/mt6701"
	"imunode/sensors"
)

const (
	name        = "imunode"
	description = "inertial and shaft-angle acquisition service"
)

var monitorClock *monotonic

// Service has embedded daemon
type Service struct {
	daemon.Daemon
}

// Manage by daemon commands or run the service
func (service *Service) Manage() (string, error) {
	configFile := flag.String("config", defaultSettingsFile, "path to the settings file")
	flag.Parse()

	usage := "Usage: " + name + " install | remove | start | stop | status"
	if flag.NArg() > 0 {
		switch flag.Arg(0) {
		case "install":
			return service.Install("-config", *configFile)
		case "remove":
			return service.Remove()
		case "start":
			return service.Start()
		case "stop":
			return service.Stop()
		case "status":
			return service.Status()
		default:
			return usage, nil
		}
	}

	run(*configFile)
	return name + " stopped", nil
}

func run(configFile string) {
	loadSettings(configFile)
	initLogging()

	monitorClock = NewMonotonic()

	spi := icm42688.NewSPIBus(byte(globalSettings.SPIChannel), globalSettings.SPISpeedHz)
	defer spi.Close()
	imu := icm42688.New(spi)

	i2c := embd.NewI2CBus(byte(globalSettings.I2CBus))
	defer i2c.Close()
	angle := mt6701.New(i2c)

	monitor := sensors.NewMonitor(imu, angle)
	if err := monitor.InitIMU(); err != nil {
		log.Errorf("IMU init failed, continuing without motion data: %v", err)
	}
	if err := monitor.InitAngle(); err != nil {
		log.Errorf("encoder init failed, continuing without angle data: %v", err)
	}

	go runCore(monitor)
	go managementInterface()
	go statusLED(globalSettings.LEDPin)

	quit := make(chan bool, 1)
	go operatorConsole(quit)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-interrupt:
		log.Infof("received %v, shutting down", sig)
	case <-quit:
		log.Info("operator quit")
	}
}

func main() {
	srv, err := daemon.New(name, description, daemon.SystemDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	service := &Service{srv}
	status, err := service.Manage()
	if err != nil {
		fmt.Fprintln(os.Stderr, status, "\nError:", err)
		os.Exit(1)
	}
	fmt.Println(status)
}
