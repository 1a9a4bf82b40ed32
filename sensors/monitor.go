// Package sensors ties the device drivers together: it tracks each
// device's lifecycle state and maintains the time-gated SensorReading
// snapshot that consumers poll.
package sensors

import (
	log "github.com/sirupsen/logrus"

	"imunode/icm42688"
	"imunode/mt6701"
)

// SamplingInterval is the minimum time between device refreshes, in
// monotonic milliseconds. It caps the bus transaction rate at 50 Hz no
// matter how often consumers poll.
const SamplingInterval = 20

// IMUSource is the inertial driver surface the Monitor consumes.
type IMUSource interface {
	ReadIdentity() (byte, error)
	VerifyIdentity() error
	Configure() error
	CaptureBurst() (icm42688.Burst, error)
}

// AngleSource is the angle encoder surface the Monitor consumes.
type AngleSource interface {
	Probe() error
	ReadAngle() mt6701.Reading
}

// Monitor owns both device drivers, their lifecycle states and the single
// SensorReading snapshot. It is a read-through cache with a fixed TTL and
// no invalidation path. Monitor is not safe for concurrent use: exactly
// one goroutine may call its methods (see the core loop in main).
type Monitor struct {
	imu   IMUSource
	angle AngleSource

	imuState   DeviceState
	angleState DeviceState

	lastRefresh uint64
	refreshed   bool
	reading     SensorReading

	// Counters, updated only on the owning goroutine.
	Refreshes   uint64
	IMUErrors   uint64
	AngleErrors uint64
}

// NewMonitor returns a Monitor over the two drivers. Both devices start
// Uninitialized; call InitIMU and InitAngle to bring them up.
func NewMonitor(imu IMUSource, angle AngleSource) *Monitor {
	return &Monitor{imu: imu, angle: angle}
}

func (m *Monitor) IMUState() DeviceState   { return m.imuState }
func (m *Monitor) AngleState() DeviceState { return m.angleState }

// InitIMU runs the identity check and configuration sequence. It may be
// called at any time, including while Ready, and always leaves the device
// either Ready or Faulted.
func (m *Monitor) InitIMU() error {
	m.imuState = Probing
	if err := m.imu.VerifyIdentity(); err != nil {
		m.imuState = Faulted
		log.Warnf("sensors: IMU identity check failed: %v", err)
		return err
	}
	m.imuState = Configuring
	if err := m.imu.Configure(); err != nil {
		m.imuState = Faulted
		log.Warnf("sensors: IMU configuration failed: %v", err)
		return err
	}
	m.imuState = Ready
	log.Info("sensors: IMU configured and ready")
	return nil
}

// InitAngle probes the encoder. Like InitIMU it is safe to call from any
// state and leaves the device Ready or Faulted.
func (m *Monitor) InitAngle() error {
	m.angleState = Probing
	if err := m.angle.Probe(); err != nil {
		m.angleState = Faulted
		log.Warnf("sensors: encoder probe failed: %v", err)
		return err
	}
	m.angleState = Ready
	log.Info("sensors: angle encoder ready")
	return nil
}

// DiagnoseIMU reads the identity register and reports the raw byte along
// with the verification verdict. A failed verdict drives a Ready device to
// Faulted; it never promotes a Faulted device, which needs a full InitIMU.
func (m *Monitor) DiagnoseIMU() (byte, error) {
	who, err := m.imu.ReadIdentity()
	if err == nil {
		err = m.imu.VerifyIdentity()
	}
	if err != nil && m.imuState == Ready {
		m.imuState = Faulted
	}
	return who, err
}

// Reading returns the current snapshot, refreshing it from hardware first
// when the sampling interval has elapsed. now is a monotonic millisecond
// count. There is no partial refresh: both devices are re-sampled together
// or neither is.
func (m *Monitor) Reading(now uint64) SensorReading {
	if m.refreshed && now-m.lastRefresh < SamplingInterval {
		return m.reading
	}
	m.refresh()
	m.lastRefresh = now
	m.refreshed = true
	return m.reading
}

// refresh recomputes every field of the snapshot and replaces it whole.
// The inertial burst always runs to completion before the encoder
// transaction starts; the two protocols are never interleaved.
func (m *Monitor) refresh() {
	next := m.reading

	if m.imuState == Ready {
		burst, err := m.imu.CaptureBurst()
		if err != nil {
			m.IMUErrors++
			log.Debugf("sensors: burst read failed: %v", err)
			next.MotionValid = false
		} else {
			next.AccelX, next.AccelY, next.AccelZ = burst.Accel()
			next.GyroX, next.GyroY, next.GyroZ = burst.Gyro()
			next.Temperature = burst.Temperature()
			next.MotionValid = !burst.AccelZero()
		}
	} else {
		next.MotionValid = false
	}

	if m.angleState == Ready {
		r := m.angle.ReadAngle()
		if !r.Valid {
			m.AngleErrors++
		}
		next.AngleRaw = r.Raw
		next.AngleValid = r.Valid
		next.Angle = r.Degrees()
	} else {
		next.AngleRaw = mt6701.RawInvalid
		next.AngleValid = false
		next.Angle = 0
	}

	m.reading = next
	m.Refreshes++
}
