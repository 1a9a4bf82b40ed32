package sensors

import "strconv"

// SensorReading is the canonical snapshot of both devices. It is owned by
// the Monitor and always replaced as a whole, never field by field, so a
// consumer can never observe a torn update. The motion fields always hold
// the last decoded values, even when MotionValid is false.
type SensorReading struct {
	AccelX      float64 `json:"accelX"`
	AccelY      float64 `json:"accelY"`
	AccelZ      float64 `json:"accelZ"`
	GyroX       float64 `json:"gyroX"`
	GyroY       float64 `json:"gyroY"`
	GyroZ       float64 `json:"gyroZ"`
	Temperature float64 `json:"temperature"`
	Angle       float64 `json:"angle"`
	AngleRaw    uint16  `json:"angleRaw"`
	AngleValid  bool    `json:"angleValid"`
	MotionValid bool    `json:"motionValid"`
}

// RecordSize bounds the serialized record. Every field is derived from a
// 16-bit register value through a fixed scale, so the widest possible
// record is far below this.
const RecordSize = 256

// AppendJSON renders the fixed-schema record into buf and returns the
// extended slice. Field order and precision are fixed: three decimals for
// acceleration, two for angular rate and angle, one for temperature.
// Appending into a caller-supplied buffer keeps the hot path free of
// allocations.
func (r SensorReading) AppendJSON(buf []byte) []byte {
	buf = append(buf, `{"accelX":`...)
	buf = strconv.AppendFloat(buf, r.AccelX, 'f', 3, 64)
	buf = append(buf, `,"accelY":`...)
	buf = strconv.AppendFloat(buf, r.AccelY, 'f', 3, 64)
	buf = append(buf, `,"accelZ":`...)
	buf = strconv.AppendFloat(buf, r.AccelZ, 'f', 3, 64)
	buf = append(buf, `,"gyroX":`...)
	buf = strconv.AppendFloat(buf, r.GyroX, 'f', 2, 64)
	buf = append(buf, `,"gyroY":`...)
	buf = strconv.AppendFloat(buf, r.GyroY, 'f', 2, 64)
	buf = append(buf, `,"gyroZ":`...)
	buf = strconv.AppendFloat(buf, r.GyroZ, 'f', 2, 64)
	buf = append(buf, `,"temperature":`...)
	buf = strconv.AppendFloat(buf, r.Temperature, 'f', 1, 64)
	buf = append(buf, `,"angle":`...)
	buf = strconv.AppendFloat(buf, r.Angle, 'f', 2, 64)
	buf = append(buf, `,"angleRaw":`...)
	buf = strconv.AppendUint(buf, uint64(r.AngleRaw), 10)
	buf = append(buf, `,"angleValid":`...)
	buf = strconv.AppendBool(buf, r.AngleValid)
	buf = append(buf, `,"motionValid":`...)
	buf = strconv.AppendBool(buf, r.MotionValid)
	buf = append(buf, '}')
	return buf
}
