package icm42688

// Register map and configuration values for the ICM-42688-P, user bank 0.
// See the InvenSense DS-000347 datasheet for the full map.
const (
	// The MSB of the first byte clocked out selects a read; a cleared MSB
	// selects a write. Subsequent bytes auto-increment the register pointer.
	readFlag = 0x80

	regDeviceConfig = 0x11 // soft reset, SPI mode
	regTempData1    = 0x1D // first byte of the 14-byte data block
	regPwrMgmt0     = 0x4E
	regGyroConfig0  = 0x4F
	regAccelConfig0 = 0x50
	regWhoAmI       = 0x75

	whoAmIValue = 0x47

	bitSoftReset = 0x01

	// PWR_MGMT0: both measurement subsystems in low-noise mode.
	gyroModeLowNoise  = 0x0C
	accelModeLowNoise = 0x03

	// GYRO_CONFIG0 / ACCEL_CONFIG0: full-scale selection in bits 7:5,
	// output data rate in bits 3:0.
	gyroFS2000DPS = 0x00 << 5
	accelFS16G    = 0x00 << 5
	odr1kHz       = 0x06

	// One burst spans TEMP_DATA1 through GYRO_DATA_Z0: temperature,
	// then accel X/Y/Z, then gyro X/Y/Z, two bytes each, high byte first.
	burstLen = 14
)

// Sensitivity constants for the ranges selected in Configure. These are
// coupled: changing a full-scale bit pattern above requires changing the
// matching divisor here in the same commit.
const (
	accelScale = 2048.0 // LSB per g at ±16 g
	gyroScale  = 16.4   // LSB per °/s at ±2000 °/s
	tempScale  = 132.48 // LSB per °C
	tempOffset = 25.0   // °C at raw zero
)
