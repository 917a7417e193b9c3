package main

import (
	"context"
	"runtime"
	"time"

	"doorcode-go/bus"
	"doorcode-go/platform"
	"doorcode-go/services/config"
	"doorcode-go/services/door"
	"doorcode-go/services/status"
)

func main() {
	time.Sleep(3 * time.Second)
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "doornode")

	println("[main] bootstrapping bus …")
	b := bus.NewBus(8)
	doorConn := b.NewConnection("door")
	statusConn := b.NewConnection("status")
	cfgConn := b.NewConnection("config")
	monConn := b.NewConnection("monitor")

	println("[main] setting up board …")
	hw, err := platform.Setup()
	if err != nil {
		println("[main] board setup failed:", err.Error())
		return
	}

	println("[main] subscribing to door/# for diagnostics …")
	mon := monConn.Subscribe(bus.T("door", "#"))
	go func() {
		for m := range mon.Channel() {
			println("[monitor] <-", m.Topic.String())
		}
	}()

	println("[main] starting services …")
	go door.Run(ctx, doorConn, hw)
	go status.Run(ctx, statusConn)
	config.NewConfigService().Start(ctx, cfgConn)

	for {
		time.Sleep(30 * time.Second)
		printMem()
	}
}

// printMem prints a compact snapshot of runtime memory stats.
// Uses builtin println to avoid fmt overhead/allocations.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"heapSys:", uint32(ms.HeapSys),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
