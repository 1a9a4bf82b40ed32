// Package icm42688 drives the InvenSense ICM-42688-P six-axis inertial
// sensor over SPI.
package icm42688

import (
	"fmt"
	"time"

	"github.com/kidoman/embd"
)

// Bus is a single SPI connection to the sensor. One Transfer call is one
// chip-select assertion: tx is clocked out while the reply is clocked in,
// so the returned slice always has len(tx) bytes. Transfers must never be
// aborted part way; deasserting chip-select mid-transfer leaves the device
// framing in an undefined state.
type Bus interface {
	Transfer(tx []byte) ([]byte, error)
}

// Settle times. The reset value is the device's documented power-up time
// with margin; the others gate consecutive configuration writes.
const (
	resetSettle  = 100 * time.Millisecond
	configSettle = time.Millisecond

	// Minimum idle period between chip-select deassertion and the next
	// assertion.
	busSettle = 10 * time.Microsecond
)

// SPIBus adapts an embd SPI bus to the Bus interface and enforces the
// minimum idle period between transactions.
type SPIBus struct {
	spi          embd.SPIBus
	lastTransfer time.Time
}

// NewSPIBus opens SPI channel channel in mode 3 at the given clock speed.
func NewSPIBus(channel byte, speed int) *SPIBus {
	return &SPIBus{spi: embd.NewSPIBus(embd.SPIMode3, channel, speed, 8, 0)}
}

func (b *SPIBus) Transfer(tx []byte) ([]byte, error) {
	if idle := time.Since(b.lastTransfer); idle < busSettle {
		time.Sleep(busSettle - idle)
	}
	buf := make([]byte, len(tx))
	copy(buf, tx)
	err := b.spi.TransferAndReceiveData(buf)
	b.lastTransfer = time.Now()
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (b *SPIBus) Close() error {
	return b.spi.Close()
}

// Device is an ICM-42688-P attached to a Bus.
type Device struct {
	bus   Bus
	sleep func(time.Duration)
}

// New returns a Device on the given bus. The device is not touched until
// VerifyIdentity or Configure is called.
func New(bus Bus) *Device {
	return &Device{bus: bus, sleep: time.Sleep}
}

func (d *Device) readByte(reg byte) (byte, error) {
	rx, err := d.bus.Transfer([]byte{reg | readFlag, 0x00})
	if err != nil {
		return 0, fmt.Errorf("icm42688: couldn't read register %#02x: %v", reg, err)
	}
	return rx[1], nil
}

func (d *Device) writeByte(reg, value byte) error {
	if _, err := d.bus.Transfer([]byte{reg &^ readFlag, value}); err != nil {
		return fmt.Errorf("icm42688: couldn't write %#02x to register %#02x: %v", value, reg, err)
	}
	return nil
}

// readWord reads two consecutive registers starting at the high byte and
// composes them big-endian into a signed 16-bit value.
func (d *Device) readWord(reg byte) (int16, error) {
	rx, err := d.bus.Transfer([]byte{reg | readFlag, 0x00, 0x00})
	if err != nil {
		return 0, fmt.Errorf("icm42688: couldn't read word at %#02x: %v", reg, err)
	}
	return int16(uint16(rx[1])<<8 | uint16(rx[2])), nil
}

// burstRead reads count sequential registers in a single chip-select
// assertion. The device auto-increments its register pointer for each byte
// clocked after the address, so the whole block is one coherent snapshot,
// which a sequence of discrete reads cannot guarantee.
func (d *Device) burstRead(reg byte, count int) ([]byte, error) {
	tx := make([]byte, count+1)
	tx[0] = reg | readFlag
	rx, err := d.bus.Transfer(tx)
	if err != nil {
		return nil, fmt.Errorf("icm42688: burst read of %d bytes at %#02x failed: %v", count, reg, err)
	}
	return rx[1:], nil
}

// ReadIdentity returns the raw WHO_AM_I register value.
func (d *Device) ReadIdentity() (byte, error) {
	return d.readByte(regWhoAmI)
}

// VerifyIdentity reads WHO_AM_I and checks it against the device signature.
// All-ones means the bus is stuck high (typically wiring or chip-select
// trouble), all-zeros means nothing is driving MISO at all.
func (d *Device) VerifyIdentity() error {
	who, err := d.ReadIdentity()
	if err != nil {
		return err
	}
	switch who {
	case whoAmIValue:
		return nil
	case 0xFF:
		return fmt.Errorf("icm42688: WHO_AM_I reads 0xFF, bus stuck high")
	case 0x00:
		return fmt.Errorf("icm42688: WHO_AM_I reads 0x00, no device on the bus")
	default:
		return fmt.Errorf("icm42688: unexpected WHO_AM_I %#02x, want %#02x", who, whoAmIValue)
	}
}

// Configure resets the device and brings both measurement subsystems up in
// low-noise mode at ±2000 °/s and ±16 g, 1 kHz ODR. The sequence is
// fire-and-forget: each step is gated only by the datasheet settle time,
// without register read-back.
func (d *Device) Configure() error {
	if err := d.writeByte(regDeviceConfig, bitSoftReset); err != nil {
		return err
	}
	d.sleep(resetSettle)
	if err := d.writeByte(regPwrMgmt0, gyroModeLowNoise|accelModeLowNoise); err != nil {
		return err
	}
	d.sleep(configSettle)
	if err := d.writeByte(regGyroConfig0, gyroFS2000DPS|odr1kHz); err != nil {
		return err
	}
	d.sleep(configSettle)
	if err := d.writeByte(regAccelConfig0, accelFS16G|odr1kHz); err != nil {
		return err
	}
	d.sleep(configSettle)
	return nil
}

// Burst is one temporally coherent sample of all data registers.
type Burst struct {
	RawTemp  int16
	RawAccel [3]int16
	RawGyro  [3]int16
}

// CaptureBurst reads the 14-byte data block in one transaction and decodes
// it into raw register values.
func (d *Device) CaptureBurst() (Burst, error) {
	raw, err := d.burstRead(regTempData1, burstLen)
	if err != nil {
		return Burst{}, err
	}
	return decodeBurst(raw), nil
}

func decodeBurst(raw []byte) Burst {
	word := func(i int) int16 {
		return int16(uint16(raw[i])<<8 | uint16(raw[i+1]))
	}
	var b Burst
	b.RawTemp = word(0)
	for i := 0; i < 3; i++ {
		b.RawAccel[i] = word(2 + 2*i)
		b.RawGyro[i] = word(8 + 2*i)
	}
	return b
}

// Accel returns linear acceleration in g for the configured ±16 g range.
func (b Burst) Accel() (x, y, z float64) {
	return float64(b.RawAccel[0]) / accelScale,
		float64(b.RawAccel[1]) / accelScale,
		float64(b.RawAccel[2]) / accelScale
}

// Gyro returns angular rate in °/s for the configured ±2000 °/s range.
func (b Burst) Gyro() (x, y, z float64) {
	return float64(b.RawGyro[0]) / gyroScale,
		float64(b.RawGyro[1]) / gyroScale,
		float64(b.RawGyro[2]) / gyroScale
}

// Temperature returns degrees Celsius.
func (b Burst) Temperature() float64 {
	return float64(b.RawTemp)/tempScale + tempOffset
}

// AccelZero reports whether the accelerometer vector decoded to all zeros.
// At rest under gravity one axis must register near ±1 g, so an all-zero
// vector is a transport failure signature, not a plausible reading.
func (b Burst) AccelZero() bool {
	return b.RawAccel[0] == 0 && b.RawAccel[1] == 0 && b.RawAccel[2] == 0
}
