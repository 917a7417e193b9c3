// Package mfrc522 drives the NXP MFRC522 contactless reader over SPI.
// Scope is ISO 14443A detection and UID acquisition:
//
//	present := d.IsNewCardPresent() // 7-bit REQA probe
//	uid, err := d.ReadUID()         // anticollision + select, levels 1-2
//	_ = d.HaltA()                   // put the card to sleep
//	_ = d.StopCrypto1()             // drop any crypto session
//
// UID slices point into the device's buffer and are only valid until
// the next call. Single-card operation: a collision is reported, not
// resolved bit by bit.
package mfrc522

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Errors returned by the driver.
var (
	ErrNoCard    = errors.New("mfrc522: no card")
	ErrTimeout   = errors.New("mfrc522: timeout")
	ErrCollision = errors.New("mfrc522: collision")
	ErrChecksum  = errors.New("mfrc522: uid checksum")
	ErrProtocol  = errors.New("mfrc522: protocol error")
)

// Pin is the chip-select line. machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// Device wraps an SPI connection to one MFRC522.
type Device struct {
	bus drivers.SPI
	cs  Pin

	fifo [16]byte // transceive response scratch
	uid  [10]byte // assembled UID
}

// New creates the device handle. The SPI bus must already be
// configured (mode 0, up to 10 MHz); the chip is not touched.
func New(bus drivers.SPI, cs Pin) *Device {
	return &Device{bus: bus, cs: cs}
}

// Configure soft-resets the chip and applies the 14443A setup: a
// ~25 ms timeout timer, 100% ASK modulation, CRC preset 0x6363, and
// the antenna drivers on.
func (d *Device) Configure() error {
	d.cs.High()
	if err := d.writeReg(regCommand, cmdSoftReset); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond) // oscillator start-up

	setup := [...]struct{ reg, val byte }{
		{regTMode, 0x80},      // TAuto: timer starts at end of transmission
		{regTPrescaler, 0xA9}, // ~40 kHz timer tick
		{regTReloadH, 0x03},
		{regTReloadL, 0xE8}, // reload 1000 -> ~25 ms
		{regTxASK, 0x40},    // Force100ASK
		{regMode, 0x3D},     // CRC preset 0x6363
	}
	for _, s := range setup {
		if err := d.writeReg(s.reg, s.val); err != nil {
			return err
		}
	}
	return d.setBits(regTxControl, 0x03) // Tx1RFEn | Tx2RFEn
}

// Version returns the VersionReg value (0x91/0x92 on production
// silicon). Useful as a wiring check.
func (d *Device) Version() (byte, error) {
	return d.readReg(regVersion)
}

// IsNewCardPresent probes the field with a 7-bit REQA frame. Only
// cards in IDLE state answer, so a halted card stays silent until it
// leaves the field and returns.
func (d *Device) IsNewCardPresent() bool {
	req := [1]byte{piccReqA}
	n, err := d.transceive(req[:], 7)
	return err == nil && n == 2 // ATQA is two bytes
}

// ReadUID runs anticollision and select for cascade levels 1 and 2,
// covering 4- and 7-byte UIDs. ErrNoCard means the card left between
// the presence probe and the read. The returned slice aliases the
// device's buffer.
func (d *Device) ReadUID() ([]byte, error) {
	n := 0
	for level, sel := range [...]byte{piccSelCL1, piccSelCL2} {
		// ANTICOLLISION: SEL + NVB 0x20; the answer is 4 UID/CT
		// bytes plus their xor (BCC).
		req := [2]byte{sel, 0x20}
		got, err := d.transceive(req[:], 0)
		if err == ErrTimeout && level == 0 {
			return nil, ErrNoCard
		}
		if err != nil {
			return nil, err
		}
		if got != 5 {
			return nil, ErrProtocol
		}
		var cn [5]byte
		copy(cn[:], d.fifo[:5])
		if cn[0]^cn[1]^cn[2]^cn[3] != cn[4] {
			return nil, ErrChecksum
		}

		sak, err := d.selectLevel(sel, cn)
		if err != nil {
			return nil, err
		}

		if cn[0] == piccCT {
			n += copy(d.uid[n:], cn[1:4])
			if sak&0x04 == 0 {
				return nil, ErrProtocol // cascade tag but SAK says complete
			}
			continue
		}
		n += copy(d.uid[n:], cn[0:4])
		if sak&0x04 != 0 {
			return nil, ErrProtocol // complete UID expected at this level
		}
		return d.uid[:n], nil
	}
	// SAK kept cascading past level 2: a 10-byte UID, out of scope.
	return nil, ErrProtocol
}

// selectLevel sends SELECT (NVB 0x70) with the anticollision bytes
// and CRC_A appended, returning the SAK byte.
func (d *Device) selectLevel(sel byte, cn [5]byte) (byte, error) {
	frame := [9]byte{sel, 0x70, cn[0], cn[1], cn[2], cn[3], cn[4]}
	crc, err := d.calcCRC(frame[:7])
	if err != nil {
		return 0, err
	}
	frame[7] = byte(crc)
	frame[8] = byte(crc >> 8)
	got, err := d.transceive(frame[:], 0)
	if err != nil {
		return 0, err
	}
	if got < 1 {
		return 0, ErrProtocol
	}
	return d.fifo[0], nil
}

// HaltA puts the selected card into HALT. Success on the wire is
// silence: a timeout is the good outcome, any response is a NAK.
func (d *Device) HaltA() error {
	frame := [4]byte{piccHaltA, 0x00}
	crc, err := d.calcCRC(frame[:2])
	if err != nil {
		return err
	}
	frame[2] = byte(crc)
	frame[3] = byte(crc >> 8)
	_, err = d.transceive(frame[:], 0)
	if err == ErrTimeout {
		return nil
	}
	if err == nil {
		return ErrProtocol
	}
	return err
}

// StopCrypto1 clears the MIFARE Crypto1 flag so the chip will talk to
// the next card.
func (d *Device) StopCrypto1() error {
	return d.clearBits(regStatus2, statusMFCrypto1On)
}

// transceive runs one Transceive command: w goes out, the response
// lands in d.fifo. txLastBits 1..7 marks a short final byte (0 sends
// whole bytes). Returns the response length.
func (d *Device) transceive(w []byte, txLastBits int) (int, error) {
	if err := d.writeReg(regCommand, cmdIdle); err != nil {
		return 0, err
	}
	if err := d.writeReg(regComIrq, 0x7F); err != nil { // clear request bits
		return 0, err
	}
	if err := d.writeReg(regFIFOLevel, 0x80); err != nil { // flush
		return 0, err
	}
	if err := d.writeFIFO(w); err != nil {
		return 0, err
	}
	if err := d.writeReg(regCommand, cmdTransceive); err != nil {
		return 0, err
	}
	if err := d.writeReg(regBitFraming, 0x80|byte(txLastBits&0x07)); err != nil {
		return 0, err
	}

	// The chip's own timer raises TimerIRq ~25 ms after TX; the host
	// deadline is a backstop in case the chip wedges.
	deadline := time.Now().Add(40 * time.Millisecond)
	for {
		irq, err := d.readReg(regComIrq)
		if err != nil {
			return 0, err
		}
		if irq&(irqRx|irqIdle) != 0 {
			break
		}
		if irq&irqTimer != 0 {
			return 0, ErrTimeout
		}
		if time.Now().After(deadline) {
			return 0, ErrTimeout
		}
	}

	e, err := d.readReg(regError)
	if err != nil {
		return 0, err
	}
	if e&errColl != 0 {
		return 0, ErrCollision
	}
	if e&(errBufferOvfl|errParity|errProtocol) != 0 {
		return 0, ErrProtocol
	}

	lvl, err := d.readReg(regFIFOLevel)
	if err != nil {
		return 0, err
	}
	n := int(lvl)
	if n > len(d.fifo) {
		n = len(d.fifo)
	}
	for i := 0; i < n; i++ {
		b, err := d.readReg(regFIFOData)
		if err != nil {
			return 0, err
		}
		d.fifo[i] = b
	}
	return n, nil
}

// calcCRC runs the chip's CRC_A coprocessor over data.
func (d *Device) calcCRC(data []byte) (uint16, error) {
	if err := d.writeReg(regCommand, cmdIdle); err != nil {
		return 0, err
	}
	if err := d.writeReg(regDivIrq, irqCRC); err != nil { // clear CRCIRq
		return 0, err
	}
	if err := d.writeReg(regFIFOLevel, 0x80); err != nil {
		return 0, err
	}
	if err := d.writeFIFO(data); err != nil {
		return 0, err
	}
	if err := d.writeReg(regCommand, cmdCalcCRC); err != nil {
		return 0, err
	}

	deadline := time.Now().Add(90 * time.Millisecond)
	for {
		irq, err := d.readReg(regDivIrq)
		if err != nil {
			return 0, err
		}
		if irq&irqCRC != 0 {
			break
		}
		if time.Now().After(deadline) {
			return 0, ErrTimeout
		}
	}
	if err := d.writeReg(regCommand, cmdIdle); err != nil {
		return 0, err
	}
	lo, err := d.readReg(regCRCResultL)
	if err != nil {
		return 0, err
	}
	hi, err := d.readReg(regCRCResultH)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// ---- SPI register access: address byte is reg<<1, MSB set on reads ----

func (d *Device) writeReg(reg, val byte) error {
	d.cs.Low()
	err := d.bus.Tx([]byte{reg << 1, val}, nil)
	d.cs.High()
	return err
}

func (d *Device) readReg(reg byte) (byte, error) {
	d.cs.Low()
	w := []byte{(reg << 1) | 0x80, 0}
	r := []byte{0, 0}
	err := d.bus.Tx(w, r)
	d.cs.High()
	if err != nil {
		return 0, err
	}
	return r[1], nil
}

func (d *Device) writeFIFO(data []byte) error {
	for _, b := range data {
		if err := d.writeReg(regFIFOData, b); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) setBits(reg, mask byte) error {
	v, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, v|mask)
}

func (d *Device) clearBits(reg, mask byte) error {
	v, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, v&^mask)
}
