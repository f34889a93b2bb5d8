// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// MPU9250 registers used on the I2C path. Over SPI the periph driver owns
// the register map.
const (
	regSmplrtDiv   = 0x19 // SMPLRT_DIV
	regConfig      = 0x1A // CONFIG, DLPF_CFG in bits 2:0
	regGyroConfig  = 0x1B // GYRO_CONFIG, GYRO_FS_SEL in bits 4:3
	regAccelConfig = 0x1C // ACCEL_CONFIG, ACCEL_FS_SEL in bits 4:3
	regIntPinCfg   = 0x37 // INT_PIN_CFG
	regIntEnable   = 0x38 // INT_ENABLE
	regIntStatus   = 0x3A // INT_STATUS
	regAccelXoutH  = 0x3B // ACCEL_XOUT_H; accel, temp and gyro follow, 14 bytes
	regPwrMgmt1    = 0x6B // PWR_MGMT_1
	regWhoAmI      = 0x75 // WHO_AM_I

	pwrMgmt1Reset     = 0x80 // H_RESET
	pwrMgmt1AutoClock = 0x01 // CLKSEL: best available clock
	configDLPF41Hz    = 0x03
	smplrtDiv200Hz    = 0x04 // 1kHz / (1 + 4)

	intPinCfgBypassEn = 0x02 // BYPASS_EN: host sees the AK8963 on the bus
	intEnableRawRdy   = 0x01 // RAW_RDY_EN: latch RAW_DATA_RDY_INT in INT_STATUS
	intStatusRawRdy   = 0x01 // RAW_DATA_RDY_INT
)

// WHO_AM_I values of the MPU9250 and the pin-compatible MPU9255.
var mpuDeviceIDs = map[byte]string{0x71: "MPU9250", 0x73: "MPU9255"}

// AK8963 registers, reachable once bypass is enabled.
const (
	ak8963Addr = 0x0C

	akWIA   = 0x00 // WHO_AM_I, reads 0x48
	akST1   = 0x02 // bit0 DRDY
	akHXL   = 0x03 // HXL..HZH then ST2
	akCNTL1 = 0x0A
	akASAX  = 0x10 // ASAX, ASAY, ASAZ

	akDeviceID = 0x48

	akST1DataReady = 0x01
	akST2Overflow  = 0x08

	akModePowerDown  = 0x00
	akModeFuseROM    = 0x0F
	akModeContinuous = 0x16 // 16-bit output, 100Hz continuous
)

// Full-scale tables indexed by the configured range selector.
var (
	accelRangeG   = [4]int{2, 4, 8, 16}
	gyroRangeDegS = [4]int{250, 500, 1000, 2000}
)
