// Package lineio frames a serial byte stream into command lines:
// CR is ignored, LF terminates, oversize lines are truncated, and a
// partial line is flushed after an idle window (the behavior of a
// serial console whose reads time out mid-line).
package lineio

import (
	"context"
	"time"

	"doorcode-go/hal"
	"doorcode-go/x/mathx"
)

// Line is one framed input line, terminator stripped.
type Line struct {
	Data []byte
	TS   time.Time
}

type Config struct {
	Port      hal.Port
	MaxLine   int           // clamp 16..256
	IdleFlush time.Duration // 0 disables; clamp <= 2s
}

type Worker struct {
	outQ chan Line
}

func New(outBuf int) *Worker {
	if outBuf <= 0 {
		outBuf = 16
	}
	return &Worker{outQ: make(chan Line, outBuf)}
}

func (w *Worker) Lines() <-chan Line { return w.outQ }

// Start launches the reader goroutine and returns its cancel func.
// Reads are taken in bounded slices so shutdown and idle flush stay
// responsive without a readiness channel from the port.
func (w *Worker) Start(ctx context.Context, cfg Config) func() {
	max := mathx.Clamp(cfg.MaxLine, 16, 256)
	idle := mathx.Clamp(cfg.IdleFlush, 0, 2*time.Second)

	slice := 250 * time.Millisecond
	if idle > 0 && idle < slice {
		slice = idle
	}

	cctx, cancel := context.WithCancel(ctx)

	go func() {
		buf := make([]byte, max)
		line := make([]byte, 0, max)
		var lastByte time.Time

		flush := func(now time.Time) {
			if len(line) == 0 {
				return
			}
			payload := append([]byte(nil), line...)
			line = line[:0]
			select {
			case w.outQ <- Line{Data: payload, TS: now}:
			default:
				// drop if consumer is slow
			}
		}

		for {
			rctx, rcancel := context.WithTimeout(cctx, slice)
			n, _ := cfg.Port.RecvSomeContext(rctx, buf)
			rcancel()
			if cctx.Err() != nil {
				return
			}

			now := time.Now()
			if n <= 0 {
				if idle > 0 && len(line) > 0 && now.Sub(lastByte) >= idle {
					flush(now)
				}
				continue
			}

			lastByte = now
			for i := 0; i < n; i++ {
				switch b := buf[i]; b {
				case '\n':
					flush(now)
				case '\r':
					// ignore
				default:
					if len(line) < max {
						line = append(line, b)
					}
				}
			}
		}
	}()

	return cancel
}
