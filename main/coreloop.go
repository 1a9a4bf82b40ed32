package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"imunode/sensors"
)

type snapshotRequest struct {
	reply chan sensors.SensorReading
}

type commandKind int

const (
	cmdStatus commandKind = iota
	cmdDiagIMU
	cmdReconfigIMU
	cmdReprobeAngle
)

type statusReport struct {
	Uptime      string              `json:"Uptime"`
	UptimeMs    uint64              `json:"UptimeMs"`
	IMUState    sensors.DeviceState `json:"IMUState"`
	AngleState  sensors.DeviceState `json:"AngleState"`
	Refreshes   uint64              `json:"Refreshes"`
	IMUErrors   uint64              `json:"IMUErrors"`
	AngleErrors uint64              `json:"AngleErrors"`
}

type commandReply struct {
	WhoAmI byte
	Err    error
	Status statusReport
}

type coreCommand struct {
	kind  commandKind
	reply chan commandReply
}

var (
	coreRequests = make(chan snapshotRequest)
	coreCommands = make(chan coreCommand)

	snapshotRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imunode_snapshot_requests_total",
		Help: "Snapshot requests served from the sample cache.",
	})
	deviceRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imunode_device_refreshes_total",
		Help: "Combined device refreshes actually performed on the buses.",
	})
	imuReadErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imunode_imu_read_errors_total",
		Help: "Failed inertial burst reads.",
	})
	angleReadErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imunode_angle_read_errors_total",
		Help: "Angle transactions that returned the failure sentinel.",
	})
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imunode_commands_total",
		Help: "Operator commands serviced, by command.",
	}, []string{"command"})
)

// runCore owns the Monitor. Every bus transaction is funneled through this
// one goroutine, which services snapshot requests and operator commands
// round-robin, so the two device protocols are never contended and every
// snapshot is handed out whole.
func runCore(m *sensors.Monitor) {
	var refreshes, imuErrs, angleErrs uint64
	syncCounters := func() {
		deviceRefreshesTotal.Add(float64(m.Refreshes - refreshes))
		imuReadErrorsTotal.Add(float64(m.IMUErrors - imuErrs))
		angleReadErrorsTotal.Add(float64(m.AngleErrors - angleErrs))
		refreshes, imuErrs, angleErrs = m.Refreshes, m.IMUErrors, m.AngleErrors
	}

	for {
		select {
		case req := <-coreRequests:
			snapshotRequestsTotal.Inc()
			req.reply <- m.Reading(monitorClock.Milliseconds())
			syncCounters()
		case cmd := <-coreCommands:
			cmd.reply <- serviceCommand(m, cmd.kind)
			syncCounters()
		}
	}
}

func serviceCommand(m *sensors.Monitor, kind commandKind) commandReply {
	var rep commandReply
	switch kind {
	case cmdStatus:
		rep.Status = statusReport{
			Uptime:      monitorClock.Uptime(),
			UptimeMs:    monitorClock.Milliseconds(),
			IMUState:    m.IMUState(),
			AngleState:  m.AngleState(),
			Refreshes:   m.Refreshes,
			IMUErrors:   m.IMUErrors,
			AngleErrors: m.AngleErrors,
		}
	case cmdDiagIMU:
		commandsTotal.WithLabelValues("diag").Inc()
		rep.WhoAmI, rep.Err = m.DiagnoseIMU()
	case cmdReconfigIMU:
		commandsTotal.WithLabelValues("reconfig").Inc()
		rep.Err = m.InitIMU()
	case cmdReprobeAngle:
		commandsTotal.WithLabelValues("reprobe").Inc()
		rep.Err = m.InitAngle()
	}
	return rep
}

// currentReading asks the core loop for the present snapshot, refreshing
// it first if the sampling interval has elapsed.
func currentReading() sensors.SensorReading {
	req := snapshotRequest{reply: make(chan sensors.SensorReading, 1)}
	coreRequests <- req
	return <-req.reply
}

func submitCommand(kind commandKind) commandReply {
	cmd := coreCommand{kind: kind, reply: make(chan commandReply, 1)}
	coreCommands <- cmd
	return <-cmd.reply
}
