// Package mfrc522 register map and protocol constants (datasheet
// section 9; PICC commands per ISO/IEC 14443-3).
package mfrc522

const (
	// --- PCD commands (CommandReg) ---
	cmdIdle       = 0x00
	cmdCalcCRC    = 0x03
	cmdTransceive = 0x0C
	cmdSoftReset  = 0x0F

	// --- Register sub-addresses ---
	regCommand    = 0x01 // starts and stops command execution
	regComIEn     = 0x02
	regComIrq     = 0x04
	regDivIrq     = 0x05
	regError      = 0x06
	regStatus2    = 0x08 // receiver/transmitter status, crypto flag
	regFIFOData   = 0x09
	regFIFOLevel  = 0x0A
	regControl    = 0x0C
	regBitFraming = 0x0D
	regColl       = 0x0E

	regMode      = 0x11
	regTxControl = 0x14 // antenna driver control
	regTxASK     = 0x15

	regCRCResultH = 0x21
	regCRCResultL = 0x22
	regTMode      = 0x2A
	regTPrescaler = 0x2B
	regTReloadH   = 0x2C
	regTReloadL   = 0x2D

	regVersion = 0x37

	// --- ComIrqReg bits ---
	irqRx    = 0x20
	irqIdle  = 0x10
	irqTimer = 0x01

	// --- DivIrqReg bits ---
	irqCRC = 0x04

	// --- ErrorReg bits ---
	errProtocol   = 0x01
	errParity     = 0x02
	errColl       = 0x08
	errBufferOvfl = 0x10

	// --- Status2Reg bits ---
	statusMFCrypto1On = 0x08

	// --- PICC commands ---
	piccReqA   = 0x26
	piccCT     = 0x88 // cascade tag, first UID byte when more levels follow
	piccSelCL1 = 0x93
	piccSelCL2 = 0x95
	piccHaltA  = 0x50
)
