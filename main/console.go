package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// operatorConsole services plain-text commands on stdin. It is a thin
// wrapper: every effect goes through the core loop like any other caller,
// so commands are safe at any time, including while Ready.
func operatorConsole(quit chan<- bool) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "":
		case "status":
			rep := submitCommand(cmdStatus)
			fmt.Printf("uptime %s  imu %s  angle %s  refreshes %d  imu errors %d  angle errors %d\n",
				rep.Status.Uptime, rep.Status.IMUState, rep.Status.AngleState,
				rep.Status.Refreshes, rep.Status.IMUErrors, rep.Status.AngleErrors)
		case "diag":
			rep := submitCommand(cmdDiagIMU)
			if rep.Err != nil {
				fmt.Printf("WHO_AM_I %#02x: %v\n", rep.WhoAmI, rep.Err)
			} else {
				fmt.Printf("WHO_AM_I %#02x: ok\n", rep.WhoAmI)
			}
		case "reconfig":
			reportResult(submitCommand(cmdReconfigIMU).Err, "IMU reconfigured")
		case "reprobe":
			reportResult(submitCommand(cmdReprobeAngle).Err, "encoder probed")
		case "quit":
			quit <- true
			return
		default:
			fmt.Println("commands: status diag reconfig reprobe quit")
		}
	}
}

func reportResult(err error, ok string) {
	if err != nil {
		fmt.Println(err)
	} else {
		fmt.Println(ok)
	}
}
