package platform

import (
	"doorcode-go/drivers/mfrc522"
	"doorcode-go/hal"
)

// Reader adapts an mfrc522.Device to hal.CardReader.
type Reader struct {
	dev *mfrc522.Device
}

var _ hal.CardReader = (*Reader)(nil)

func NewReader(dev *mfrc522.Device) *Reader { return &Reader{dev: dev} }

func (r *Reader) CardPresent() bool { return r.dev.IsNewCardPresent() }

func (r *Reader) ReadUID() ([]byte, error) { return r.dev.ReadUID() }

// EndSession halts the card and drops any crypto state. Both steps
// always run; the first failure wins.
func (r *Reader) EndSession() error {
	err := r.dev.HaltA()
	if err2 := r.dev.StopCrypto1(); err == nil {
		err = err2
	}
	return err
}
