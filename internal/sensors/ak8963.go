// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/golang/geo/r3"
	"periph.io/x/conn/v3/i2c"
)

// ak8963 is the magnetometer die inside the MPU9250, driven directly over
// I2C once the MPU's bypass mux is open.
type ak8963 struct {
	dev *i2c.Dev
	adj r3.Vector
}

func (m *ak8963) writeReg(reg, value byte) error {
	if _, err := m.dev.Write([]byte{reg, value}); err != nil {
		return fmt.Errorf("ak8963 write 0x%02X: %w", reg, err)
	}
	return nil
}

func (m *ak8963) readRegs(reg byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := m.dev.Tx([]byte{reg}, buf); err != nil {
		return nil, fmt.Errorf("ak8963 read 0x%02X: %w", reg, err)
	}
	return buf, nil
}

// newAK8963 brings the magnetometer up in 16-bit continuous mode. The MPU
// bypass mux must already be open.
func newAK8963(bus i2c.Bus) (*ak8963, error) {
	m := &ak8963{dev: &i2c.Dev{Bus: bus, Addr: ak8963Addr}}

	id, err := m.readRegs(akWIA, 1)
	if err != nil {
		return nil, err
	}
	if id[0] != akDeviceID {
		return nil, fmt.Errorf("ak8963: unexpected WHO_AM_I 0x%02X", id[0])
	}

	// Mode changes need 100µs in power-down between them.
	if err := m.writeReg(akCNTL1, akModePowerDown); err != nil {
		return nil, err
	}
	time.Sleep(10 * time.Millisecond)
	if err := m.writeReg(akCNTL1, akModeFuseROM); err != nil {
		return nil, err
	}
	time.Sleep(10 * time.Millisecond)
	asa, err := m.readRegs(akASAX, 3)
	if err != nil {
		return nil, err
	}
	m.adj = r3.Vector{
		X: sensitivityAdjustment(asa[0]),
		Y: sensitivityAdjustment(asa[1]),
		Z: sensitivityAdjustment(asa[2]),
	}

	if err := m.writeReg(akCNTL1, akModePowerDown); err != nil {
		return nil, err
	}
	time.Sleep(10 * time.Millisecond)
	if err := m.writeReg(akCNTL1, akModeContinuous); err != nil {
		return nil, err
	}
	time.Sleep(10 * time.Millisecond)
	return m, nil
}

// read returns the field in µT. ok is false when no fresh data was ready or
// the reading overflowed.
func (m *ak8963) read() (field r3.Vector, ok bool, err error) {
	st1, err := m.readRegs(akST1, 1)
	if err != nil {
		return r3.Vector{}, false, err
	}
	if st1[0]&akST1DataReady == 0 {
		return r3.Vector{}, false, nil
	}

	// Reading ST2 (the 7th byte) releases the data registers.
	buf, err := m.readRegs(akHXL, 7)
	if err != nil {
		return r3.Vector{}, false, err
	}
	if buf[6]&akST2Overflow != 0 {
		return r3.Vector{}, false, nil
	}
	return decodeMag(buf[:6], m.adj), true, nil
}

// decodeMag converts little-endian HXL..HZH to µT with the fuse ROM
// adjustment applied.
func decodeMag(b []byte, adj r3.Vector) r3.Vector {
	x := int16(binary.LittleEndian.Uint16(b[0:2]))
	y := int16(binary.LittleEndian.Uint16(b[2:4]))
	z := int16(binary.LittleEndian.Uint16(b[4:6]))
	return r3.Vector{
		X: float64(x) * magMicroTeslaPerLSB * adj.X,
		Y: float64(y) * magMicroTeslaPerLSB * adj.Y,
		Z: float64(z) * magMicroTeslaPerLSB * adj.Z,
	}
}

func (m *ak8963) powerDown() error {
	return m.writeReg(akCNTL1, akModePowerDown)
}
