package mt6701

import (
	"errors"
	"math"
	"testing"
	"time"
)

type fakeBus struct {
	angle   [2]byte
	ackErr  error
	readErr error
	reads   int
	lastReg byte
}

func (f *fakeBus) ReadByte(addr byte) (byte, error) {
	if f.ackErr != nil {
		return 0, f.ackErr
	}
	return 0, nil
}

func (f *fakeBus) ReadFromReg(addr, reg byte, value []byte) error {
	f.reads++
	f.lastReg = reg
	if f.readErr != nil {
		return f.readErr
	}
	copy(value, f.angle[:])
	return nil
}

func newTestDevice(bus Bus) *Device {
	d := New(bus)
	d.sleep = func(time.Duration) {}
	return d
}

func TestProbe(t *testing.T) {
	if err := newTestDevice(&fakeBus{}).Probe(); err != nil {
		t.Errorf("Probe() = %v, want nil on ack", err)
	}
	noAck := &fakeBus{ackErr: errors.New("i2c: no ack")}
	if err := newTestDevice(noAck).Probe(); err == nil {
		t.Error("Probe() = nil without ack")
	}
}

func TestReadAngleMasksStatusBits(t *testing.T) {
	// Top two bits set but not all bits: a genuine reading, masked to 14 bits.
	bus := &fakeBus{angle: [2]byte{0xC1, 0x23}}
	r := newTestDevice(bus).ReadAngle()
	if !r.Valid {
		t.Fatal("ReadAngle() invalid for a completed transaction")
	}
	if r.Raw != 0x0123 {
		t.Errorf("Raw = %#04x, want 0x0123", r.Raw)
	}
	if bus.lastReg != regAngleH {
		t.Errorf("read register = %#02x, want %#02x", bus.lastReg, regAngleH)
	}
}

func TestReadAngleTransactionFailure(t *testing.T) {
	bus := &fakeBus{readErr: errors.New("i2c: no ack")}
	r := newTestDevice(bus).ReadAngle()
	if r.Valid {
		t.Error("ReadAngle() valid after a failed transaction")
	}
	if r.Raw != RawInvalid {
		t.Errorf("Raw = %#04x, want RawInvalid", r.Raw)
	}
	if r.Degrees() != 0 {
		t.Errorf("Degrees() = %v for an invalid reading, want 0", r.Degrees())
	}
}

// A register pair of all ones collides with the failure sentinel and must
// be reported invalid, never as a valid raw of 0x3FFF.
func TestReadAngleSentinelCollision(t *testing.T) {
	bus := &fakeBus{angle: [2]byte{0xFF, 0xFF}}
	r := newTestDevice(bus).ReadAngle()
	if r.Valid {
		t.Error("ReadAngle() valid for the 0xFFFF register pair")
	}
	if r.Raw == 0x3FFF && r.Valid {
		t.Error("sentinel reported as a valid raw value")
	}
}

func TestDegreesScaling(t *testing.T) {
	cases := []struct {
		raw  uint16
		want float64
	}{
		{0, 0},
		{4096, 90},
		{8192, 180},
		{12288, 270},
		{16383, 16383 * 360.0 / 16384.0},
	}
	for _, c := range cases {
		got := Reading{Raw: c.raw, Valid: true}.Degrees()
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Degrees(%d) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestDegreesMonotonic(t *testing.T) {
	prev := -1.0
	for raw := uint16(0); raw < 16384; raw += 7 {
		got := Reading{Raw: raw, Valid: true}.Degrees()
		if got <= prev {
			t.Fatalf("Degrees(%d) = %v, not increasing past %v", raw, got, prev)
		}
		if got < 0 || got >= 360 {
			t.Fatalf("Degrees(%d) = %v, outside [0, 360)", raw, got)
		}
		prev = got
	}
}
