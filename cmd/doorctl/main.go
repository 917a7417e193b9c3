//go:build !rp2040 && !rp2350

// Command doorctl talks to a door node over its serial port.
//
// Usage:
//
//	doorctl --port /dev/ttyUSB0 status
//	doorctl --port /dev/ttyUSB0 enable
//	doorctl --port /dev/ttyUSB0 setpos 45
//	doorctl --port /dev/ttyUSB0 config --idle 10 --granted 170
//	doorctl --port /dev/ttyUSB0 watch
//
// Without --port, the available serial ports are listed.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.bug.st/serial"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		portName string
		baud     int
		timeout  time.Duration
		idle     int
		granted  int
	)

	fs := pflag.NewFlagSet("doorctl", pflag.ContinueOnError)
	fs.StringVar(&portName, "port", "", "serial port of the node (e.g. /dev/ttyUSB0)")
	fs.IntVar(&baud, "baud", 9600, "baud rate")
	fs.DurationVar(&timeout, "timeout", 2*time.Second, "response timeout")
	fs.IntVar(&idle, "idle", 0, "config: default (idle) position")
	fs.IntVar(&granted, "granted", 0, "config: allowed (granted) position")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	args := fs.Args()
	if portName == "" {
		return listPorts()
	}
	if len(args) == 0 {
		return fmt.Errorf("missing command (status|enable|disable|setpos|config|watch)")
	}

	var cmd string
	switch args[0] {
	case "status":
		cmd = "STATUS"
	case "enable":
		cmd = "A"
	case "disable":
		cmd = "D"
	case "setpos":
		if len(args) != 2 {
			return fmt.Errorf("usage: setpos <deg>")
		}
		if _, err := strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("setpos: %q is not a number", args[1])
		}
		cmd = "SETPOS:" + args[1]
	case "config":
		parts := make([]string, 0, 2)
		if fs.Changed("idle") {
			parts = append(parts, `"default_pos":`+strconv.Itoa(idle))
		}
		if fs.Changed("granted") {
			parts = append(parts, `"allowed_pos":`+strconv.Itoa(granted))
		}
		if len(parts) == 0 {
			return fmt.Errorf("config: pass --idle and/or --granted")
		}
		cmd = "{" + strings.Join(parts, ",") + "}"
	case "watch":
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", portName, err)
	}
	defer port.Close()

	if args[0] == "watch" {
		return watch(port)
	}

	if err := port.SetReadTimeout(timeout); err != nil {
		return err
	}
	if _, err := port.Write([]byte(cmd + "\n")); err != nil {
		return err
	}

	line, err := readLine(port)
	if err != nil {
		return err
	}
	if line == "" {
		// Unknown commands and config parse failures are silent on the
		// wire; a timeout is all a caller gets.
		return fmt.Errorf("no response within %s", timeout)
	}
	fmt.Println(line)
	return nil
}

// readLine reads up to the first newline. A zero-byte read signals the
// port's read timeout.
func readLine(port serial.Port) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 64)
	for {
		n, err := port.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return sb.String(), nil
		}
		for _, c := range buf[:n] {
			if c == '\n' {
				return strings.TrimRight(sb.String(), "\r"), nil
			}
			sb.WriteByte(c)
		}
	}
}

// watch streams every line the node emits, including the periodic
// status frames.
func watch(port serial.Port) error {
	fmt.Println("watching; interrupt to stop")
	buf := make([]byte, 256)
	var line []byte
	for {
		n, err := port.Read(buf)
		if err != nil {
			return err
		}
		for _, c := range buf[:n] {
			switch c {
			case '\n':
				fmt.Println(string(line))
				line = line[:0]
			case '\r':
			default:
				line = append(line, c)
			}
		}
	}
}

func listPorts() error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		return fmt.Errorf("no serial ports found")
	}
	fmt.Println("available ports (pass one with --port):")
	for _, p := range ports {
		fmt.Println(" ", p)
	}
	return nil
}
