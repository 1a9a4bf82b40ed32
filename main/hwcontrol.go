package main

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stianeikeland/go-rpio/v4"

	"imunode/sensors"
)

const (
	heartbeatPeriod  = time.Second
	faultBlinkPeriod = 150 * time.Millisecond
)

// statusLED drives the board LED: slow heartbeat while both devices are
// Ready, fast blink when either is not.
func statusLED(pin int) {
	if pin < 0 {
		return
	}
	if err := rpio.Open(); err != nil {
		log.Warnf("hwcontrol: GPIO unavailable, LED disabled: %v", err)
		return
	}
	led := rpio.Pin(pin)
	led.Output()

	for {
		rep := submitCommand(cmdStatus)
		period := heartbeatPeriod
		if rep.Status.IMUState != sensors.Ready || rep.Status.AngleState != sensors.Ready {
			period = faultBlinkPeriod
		}
		led.Toggle()
		time.Sleep(period)
	}
}
