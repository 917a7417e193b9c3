// Package status periodically reports the controller state over the
// serial link. Frames go through the door service's serial/tx funnel,
// so this service never touches the port itself.
package status

import (
	"context"
	"encoding/json"
	"time"

	"doorcode-go/bus"
	"doorcode-go/types"
	"doorcode-go/x/conv"
	"doorcode-go/x/mathx"
)

var (
	topicConfigStatus = bus.T("config", "status")
	topicState        = bus.T("door", "state")
	topicSerialTx     = bus.T("serial", "tx")
)

const defaultPeriod = 2 * time.Second

// Run blocks until ctx is cancelled. Nothing is emitted until the
// first door/state arrives; a period_ms of 0 disables reporting.
func Run(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigStatus)
	stateSub := conn.Subscribe(topicState)
	defer conn.Unsubscribe(cfgSub)
	defer conn.Unsubscribe(stateSub)

	tick := time.NewTicker(defaultPeriod)
	defer tick.Stop()
	emitting := true

	var (
		st   types.DoorState
		have bool
		buf  = make([]byte, 0, 96)
	)

	for {
		select {
		case <-ctx.Done():
			println("[status] stopping")
			return

		case msg := <-cfgSub.Channel():
			var cfg types.StatusConfig
			if err := decodeJSON(msg.Payload, &cfg); err != nil {
				println("[status] config decode failed:", err.Error())
				continue
			}
			if cfg.PeriodMs <= 0 {
				emitting = false
				tick.Stop()
				println("[status] reporting disabled")
				continue
			}
			period := time.Duration(mathx.Clamp(cfg.PeriodMs, 200, 3_600_000)) * time.Millisecond
			tick.Reset(period)
			emitting = true

		case msg := <-stateSub.Channel():
			if s, ok := msg.Payload.(types.DoorState); ok {
				st = s
				have = true
			}

		case <-tick.C:
			if !emitting || !have {
				continue
			}
			buf = appendStatusFrame(buf[:0], st)
			conn.Publish(conn.NewMessage(topicSerialTx, types.TxFrame{Line: string(buf)}, false))
		}
	}
}

func appendStatusFrame(dst []byte, st types.DoorState) []byte {
	dst = append(dst, `{"status":{"servo":{"position":`...)
	dst = conv.AppendInt(dst, st.Position)
	dst = append(dst, `,"enabled":`...)
	if st.Enabled {
		dst = append(dst, "true"...)
	} else {
		dst = append(dst, "false"...)
	}
	dst = append(dst, `},"rfid":{"cards_registered":`...)
	dst = conv.AppendInt(dst, st.Cards)
	dst = append(dst, `}}}`...)
	return dst
}

func decodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}
