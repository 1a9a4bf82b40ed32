// Package mt6701 drives the MagnTek MT6701 magnetic angle encoder over I2C.
package mt6701

import (
	"fmt"
	"time"
)

const (
	// Address is the encoder's fixed I2C address.
	Address = 0x06

	// regAngleH holds angle bits 13:6; the device auto-increments to the
	// low-byte register for the second byte of the read.
	regAngleH = 0x03

	// readFailed is the transport-level failure sentinel: all bits set.
	// The top two bits of a genuine register pair are status bits that are
	// never both one, so no real reading can collide with it.
	readFailed = 0xFFFF

	// rawMask discards those status bits, leaving the 14-bit angle.
	rawMask = 0x3FFF

	// RawInvalid marks a Reading whose transaction failed. It lies outside
	// the valid raw range [0, 16383].
	RawInvalid uint16 = 0xFFFF

	// countsPerRev is the encoder resolution: 2^14 counts per 360°.
	countsPerRev = 16384.0

	// powerSettle covers the encoder's start-up time after it first
	// acknowledges, before angles are trustworthy.
	powerSettle = time.Millisecond
)

// Bus is the subset of embd.I2CBus the driver needs. ReadFromReg writes the
// register pointer, issues a repeated start and reads into value, which is
// exactly the transaction shape the encoder expects.
type Bus interface {
	ReadByte(addr byte) (byte, error)
	ReadFromReg(addr, reg byte, value []byte) error
}

// Device is an MT6701 attached to a Bus.
type Device struct {
	bus   Bus
	addr  byte
	sleep func(time.Duration)
}

// New returns a Device at the encoder's fixed address on the given bus.
func New(bus Bus) *Device {
	return &Device{bus: bus, addr: Address, sleep: time.Sleep}
}

// Probe issues a bare addressed read and waits out the power-up settle
// time. An acknowledgment is the only sign of life the MT6701 offers over
// this protocol: it has no identity register to verify.
func (d *Device) Probe() error {
	if _, err := d.bus.ReadByte(d.addr); err != nil {
		return fmt.Errorf("mt6701: no ack from %#02x: %v", d.addr, err)
	}
	d.sleep(powerSettle)
	return nil
}

// readAngleRegisterPair reads the two angle registers and composes them
// big-endian. Any transaction failure is reported as the readFailed
// sentinel rather than an error.
func (d *Device) readAngleRegisterPair() uint16 {
	var raw [2]byte
	if err := d.bus.ReadFromReg(d.addr, regAngleH, raw[:]); err != nil {
		return readFailed
	}
	return uint16(raw[0])<<8 | uint16(raw[1])
}

// Reading is one angle sample. When Valid is false the transaction failed
// and Raw holds RawInvalid.
type Reading struct {
	Raw   uint16
	Valid bool
}

// Degrees converts the raw count to degrees in [0, 360). It returns 0 for
// an invalid reading.
func (r Reading) Degrees() float64 {
	if !r.Valid {
		return 0
	}
	return float64(r.Raw) * 360.0 / countsPerRev
}

// ReadAngle never fails: a failed transaction comes back with Valid false,
// so the caller always has a value to publish. A register pair of 0xFFFF is
// indistinguishable from the failure sentinel by construction and is
// likewise reported invalid.
func (d *Device) ReadAngle() Reading {
	composite := d.readAngleRegisterPair()
	if composite == readFailed {
		return Reading{Raw: RawInvalid}
	}
	return Reading{Raw: composite & rawMask, Valid: true}
}
