package icm42688

import (
	"errors"
	"math"
	"testing"
	"time"
)

// fakeBus replays canned replies and records every transfer.
type fakeBus struct {
	replies  [][]byte
	sent     [][]byte
	err      error
	nextResp int
}

func (f *fakeBus) Transfer(tx []byte) ([]byte, error) {
	cp := make([]byte, len(tx))
	copy(cp, tx)
	f.sent = append(f.sent, cp)
	if f.err != nil {
		return nil, f.err
	}
	rx := make([]byte, len(tx))
	if f.nextResp < len(f.replies) {
		copy(rx, f.replies[f.nextResp])
		f.nextResp++
	}
	return rx, nil
}

func newTestDevice(bus Bus) *Device {
	d := New(bus)
	d.sleep = func(time.Duration) {}
	return d
}

func TestVerifyIdentity(t *testing.T) {
	cases := []struct {
		name string
		who  byte
		ok   bool
	}{
		{"match", 0x47, true},
		{"stuck bus", 0xFF, false},
		{"absent", 0x00, false},
		{"wrong part", 0x42, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bus := &fakeBus{replies: [][]byte{{0x00, c.who}}}
			d := newTestDevice(bus)
			err := d.VerifyIdentity()
			if c.ok && err != nil {
				t.Errorf("VerifyIdentity() = %v, want nil", err)
			}
			if !c.ok && err == nil {
				t.Errorf("VerifyIdentity() accepted WHO_AM_I %#02x", c.who)
			}
			if got := bus.sent[0][0]; got != regWhoAmI|readFlag {
				t.Errorf("first transferred byte = %#02x, want read of %#02x", got, regWhoAmI)
			}
		})
	}
}

func TestVerifyIdentityBusError(t *testing.T) {
	d := newTestDevice(&fakeBus{err: errors.New("spidev: transfer failed")})
	if err := d.VerifyIdentity(); err == nil {
		t.Error("VerifyIdentity() = nil on a failed transfer")
	}
}

func TestConfigureSequence(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(bus)
	if err := d.Configure(); err != nil {
		t.Fatalf("Configure() = %v", err)
	}

	want := [][]byte{
		{regDeviceConfig, bitSoftReset},
		{regPwrMgmt0, gyroModeLowNoise | accelModeLowNoise},
		{regGyroConfig0, gyroFS2000DPS | odr1kHz},
		{regAccelConfig0, accelFS16G | odr1kHz},
	}
	if len(bus.sent) != len(want) {
		t.Fatalf("Configure() issued %d transfers, want %d", len(bus.sent), len(want))
	}
	for i, w := range want {
		got := bus.sent[i]
		if len(got) != 2 || got[0] != w[0] || got[1] != w[1] {
			t.Errorf("transfer %d = % x, want % x", i, got, w)
		}
		if got[0]&readFlag != 0 {
			t.Errorf("transfer %d has the read bit set on a write", i)
		}
	}
}

func TestConfigureAbortsOnWriteFailure(t *testing.T) {
	bus := &fakeBus{err: errors.New("spidev: transfer failed")}
	d := newTestDevice(bus)
	if err := d.Configure(); err == nil {
		t.Fatal("Configure() = nil on a failed reset write")
	}
	if len(bus.sent) != 1 {
		t.Errorf("Configure() issued %d transfers after a failure, want 1", len(bus.sent))
	}
}

func TestCaptureBurstFraming(t *testing.T) {
	reply := make([]byte, burstLen+1)
	bus := &fakeBus{replies: [][]byte{reply}}
	d := newTestDevice(bus)
	if _, err := d.CaptureBurst(); err != nil {
		t.Fatalf("CaptureBurst() = %v", err)
	}
	if len(bus.sent) != 1 {
		t.Fatalf("CaptureBurst() issued %d transfers, want a single chip-select assertion", len(bus.sent))
	}
	tx := bus.sent[0]
	if len(tx) != burstLen+1 {
		t.Errorf("burst transfer length = %d, want %d", len(tx), burstLen+1)
	}
	if tx[0] != regTempData1|readFlag {
		t.Errorf("burst address byte = %#02x, want read of %#02x", tx[0], regTempData1)
	}
	for i, b := range tx[1:] {
		if b != 0 {
			t.Errorf("burst clock-out byte %d = %#02x, want 0x00 (no further address bytes)", i+1, b)
		}
	}
}

func TestBurstDecodeLayout(t *testing.T) {
	raw := []byte{
		0x01, 0x02, // temp
		0x11, 0x12, 0x21, 0x22, 0x31, 0x32, // accel X Y Z
		0x41, 0x42, 0x51, 0x52, 0x61, 0x62, // gyro X Y Z
	}
	b := decodeBurst(raw)
	if b.RawTemp != 0x0102 {
		t.Errorf("RawTemp = %#04x, want 0x0102", uint16(b.RawTemp))
	}
	wantAccel := [3]int16{0x1112, 0x2122, 0x3132}
	wantGyro := [3]int16{0x4142, 0x5152, 0x6162}
	if b.RawAccel != wantAccel {
		t.Errorf("RawAccel = %v, want %v", b.RawAccel, wantAccel)
	}
	if b.RawGyro != wantGyro {
		t.Errorf("RawGyro = %v, want %v", b.RawGyro, wantGyro)
	}
}

func TestBurstDecodeSignExtension(t *testing.T) {
	raw := make([]byte, burstLen)
	raw[2], raw[3] = 0xFF, 0xFF // accel X = -1
	b := decodeBurst(raw)
	if b.RawAccel[0] != -1 {
		t.Errorf("RawAccel[0] = %d, want -1", b.RawAccel[0])
	}
}

// Swapping two adjacent bytes in a burst must change exactly one decoded
// field: the layout keeps every register pair byte-aligned.
func TestBurstAdjacentByteIsolation(t *testing.T) {
	base := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E,
	}
	fields := func(b Burst) [7]int16 {
		return [7]int16{
			b.RawTemp,
			b.RawAccel[0], b.RawAccel[1], b.RawAccel[2],
			b.RawGyro[0], b.RawGyro[1], b.RawGyro[2],
		}
	}
	ref := fields(decodeBurst(base))
	for i := 0; i < burstLen-1; i++ {
		mut := make([]byte, burstLen)
		copy(mut, base)
		mut[i], mut[i+1] = mut[i+1], mut[i]
		got := fields(decodeBurst(mut))
		changed := 0
		for j := range ref {
			if got[j] != ref[j] {
				changed++
			}
		}
		// A swap inside one word changes one field; a swap across a word
		// boundary changes two. Never more.
		wantMax := 2
		if i%2 == 0 {
			wantMax = 1
		}
		if changed == 0 || changed > wantMax {
			t.Errorf("swapping bytes %d and %d changed %d fields, want 1..%d", i, i+1, changed, wantMax)
		}
	}
}

func TestAccelScaling(t *testing.T) {
	for _, raw := range []int16{math.MinInt16, -2048, -1, 0, 1, 2048, math.MaxInt16} {
		b := Burst{RawAccel: [3]int16{raw, 0, 0}}
		x, _, _ := b.Accel()
		want := float64(raw) / 2048.0
		if x != want {
			t.Errorf("Accel(%d) = %v, want %v", raw, x, want)
		}
	}
}

func TestGyroScaling(t *testing.T) {
	b := Burst{RawGyro: [3]int16{164, -164, 16400}}
	x, y, z := b.Gyro()
	if math.Abs(x-10) > 1e-9 || math.Abs(y+10) > 1e-9 || math.Abs(z-1000) > 1e-9 {
		t.Errorf("Gyro() = %v %v %v, want 10 -10 1000", x, y, z)
	}
}

func TestEndToEndGravityFixture(t *testing.T) {
	raw := []byte{
		0x01, 0x00, // temp 256
		0x08, 0x00, // accel X 2048 = 1 g
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	b := decodeBurst(raw)
	if got, want := b.Temperature(), 256.0/132.48+25.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Temperature() = %v, want %v", got, want)
	}
	x, y, z := b.Accel()
	if x != 1.0 || y != 0 || z != 0 {
		t.Errorf("Accel() = %v %v %v, want 1 0 0", x, y, z)
	}
	gx, gy, gz := b.Gyro()
	if gx != 0 || gy != 0 || gz != 0 {
		t.Errorf("Gyro() = %v %v %v, want all zero", gx, gy, gz)
	}
	if b.AccelZero() {
		t.Error("AccelZero() = true with X at 1 g")
	}
}

func TestEndToEndAllZeroFixture(t *testing.T) {
	b := decodeBurst(make([]byte, burstLen))
	if !b.AccelZero() {
		t.Error("AccelZero() = false for an all-zero burst")
	}
	if got := b.Temperature(); got != 25.0 {
		t.Errorf("Temperature() = %v, want the 25.0 baseline", got)
	}
	x, y, z := b.Accel()
	if x != 0 || y != 0 || z != 0 {
		t.Errorf("Accel() = %v %v %v, want all zero", x, y, z)
	}
}
