// Package trigger drives a DLP-IO8-G USB trigger box over its serial
// protocol, used to mark stimulus onsets on EEG/physiology recordings.
package trigger

import (
	"fmt"
	"log/slog"
	"time"

	"go.bug.st/serial"
)

// Lines conventionally assigned per stimulus kind.
const (
	LineVisual = "1"
	LineSound  = "2"
	LineText   = "3"
	LineVideo  = "4"
)

type DLPIO8G struct {
	port serial.Port
	log  *slog.Logger
}

// Open connects to the device, verifies it answers the ping command and
// switches it to binary mode.
func Open(device string, baudrate int, log *slog.Logger) (*DLPIO8G, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}

	d := &DLPIO8G{port: port, log: log}

	pingCmd := []byte{0x27} // '
	if _, err := port.Write(pingCmd); err != nil {
		port.Close()
		return nil, err
	}

	buf := make([]byte, 1)
	n, err := port.Read(buf)
	if err != nil || n != 1 || buf[0] != 'Q' {
		port.Close()
		return nil, fmt.Errorf("device did not respond to ping correctly")
	}

	binaryCmd := []byte{0x5C} // \
	if _, err := port.Write(binaryCmd); err != nil {
		port.Close()
		return nil, err
	}

	return d, nil
}

func (d *DLPIO8G) Close() {
	if d != nil && d.port != nil {
		d.port.Close()
	}
}

func (d *DLPIO8G) Ping() bool {
	pingCmd := []byte{0x27}
	if _, err := d.port.Write(pingCmd); err != nil {
		return false
	}

	buf := make([]byte, 1)
	n, err := d.port.Read(buf)
	return err == nil && n == 1 && buf[0] == 'Q'
}

// Set raises the given lines. Nil receivers are no-ops so callers can run
// without a trigger box attached.
func (d *DLPIO8G) Set(lines string) {
	if d == nil {
		return
	}
	if _, err := d.port.Write([]byte(lines)); err != nil {
		d.log.Warn("trigger set failed", "lines", lines, "error", err)
	}
}

// Unset lowers the given lines.
func (d *DLPIO8G) Unset(lines string) {
	if d == nil {
		return
	}
	if _, err := d.port.Write(UnsetCommand(lines)); err != nil {
		d.log.Warn("trigger unset failed", "lines", lines, "error", err)
	}
}

// Pulse raises the lines, holds them for the given time and lowers them.
func (d *DLPIO8G) Pulse(lines string, hold time.Duration) {
	if d == nil {
		return
	}
	d.Set(lines)
	time.Sleep(hold)
	d.Unset(lines)
}

// UnsetCommand maps line digits to the device's clear commands.
func UnsetCommand(lines string) []byte {
	cmd := []byte(lines)
	for i := range cmd {
		switch cmd[i] {
		case '1':
			cmd[i] = 'Q'
		case '2':
			cmd[i] = 'W'
		case '3':
			cmd[i] = 'E'
		case '4':
			cmd[i] = 'R'
		case '5':
			cmd[i] = 'T'
		case '6':
			cmd[i] = 'Y'
		case '7':
			cmd[i] = 'U'
		case '8':
			cmd[i] = 'I'
		}
	}
	return cmd
}
