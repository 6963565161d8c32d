package serialport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestNormalizeDefaults(t *testing.T) {
	got, err := PortOptions{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, PortOptions{BaudRate: 4800, DataBits: 8, StopBits: 1, Parity: "N"}, got)
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]PortOptions{
		"baud":   {BaudRate: 12345},
		"data":   {DataBits: 9},
		"stop":   {StopBits: 3},
		"parity": {Parity: "mark"},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := opts.Normalize()
			assert.Error(t, err)
		})
	}
}

func TestNormalizeParityAliases(t *testing.T) {
	for in, want := range map[string]string{"even": "E", " o ": "O", "NONE": "N"} {
		got, err := PortOptions{Parity: in}.Normalize()
		require.NoError(t, err)
		assert.Equal(t, want, got.Parity, in)
	}
}

func TestSerialMode(t *testing.T) {
	mode, err := PortOptions{BaudRate: 38400, StopBits: 2, Parity: "E"}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, 38400, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)
	assert.Equal(t, serial.EvenParity, mode.Parity)
}

func TestConfig(t *testing.T) {
	c := Config{Enabled: true}
	c.SetDefaults()
	assert.Equal(t, "NMEA0183", c.Source)
	assert.Equal(t, 4800, c.BaudRate)
	assert.Error(t, c.Validate(), "device is required")

	c.Device = "/dev/ttyUSB0"
	assert.NoError(t, c.Validate())

	c.StopBits = 5
	assert.Error(t, c.Validate())
	assert.NoError(t, Config{StopBits: 5}.Validate(), "disabled port is not checked")
}

type fakePort struct {
	timeout time.Duration
	closed  bool
	failTO  bool
}

func (p *fakePort) Read([]byte) (int, error)                             { return 0, nil }
func (p *fakePort) SetMode(*serial.Mode) error                           { return nil }
func (p *fakePort) Write(b []byte) (int, error)                          { return len(b), nil }
func (p *fakePort) Drain() error                                         { return nil }
func (p *fakePort) ResetInputBuffer() error                              { return nil }
func (p *fakePort) ResetOutputBuffer() error                             { return nil }
func (p *fakePort) SetDTR(bool) error                                    { return nil }
func (p *fakePort) SetRTS(bool) error                                    { return nil }
func (p *fakePort) GetModemStatusBits() (*serial.ModemStatusBits, error) { return nil, nil }
func (p *fakePort) Close() error                                         { p.closed = true; return nil }
func (p *fakePort) Break(time.Duration) error                            { return nil }
func (p *fakePort) SetReadTimeout(t time.Duration) error {
	if p.failTO {
		return errors.New("unsupported")
	}
	p.timeout = t
	return nil
}

func withFakePort(t *testing.T, p *fakePort, openErr error) *serial.Mode {
	t.Helper()
	var got serial.Mode
	prev := openPort
	openPort = func(_ string, mode *serial.Mode) (serial.Port, error) {
		got = *mode
		if openErr != nil {
			return nil, openErr
		}
		return p, nil
	}
	t.Cleanup(func() { openPort = prev })
	return &got
}

func TestOpen(t *testing.T) {
	p := &fakePort{}
	mode := withFakePort(t, p, nil)
	port, err := Open("/dev/ttyUSB0", PortOptions{BaudRate: 9600})
	require.NoError(t, err)
	assert.Same(t, p, port)
	assert.Equal(t, 9600, mode.BaudRate)
	assert.Equal(t, readTimeout, p.timeout)
}

func TestOpenErrors(t *testing.T) {
	withFakePort(t, nil, errors.New("no such device"))
	_, err := Open("/dev/none", PortOptions{})
	assert.ErrorContains(t, err, "/dev/none")

	_, err = Open("/dev/none", PortOptions{DataBits: 2})
	assert.Error(t, err)

	p := &fakePort{failTO: true}
	withFakePort(t, p, nil)
	_, err = Open("/dev/ttyS0", PortOptions{})
	assert.Error(t, err)
	assert.True(t, p.closed)
}
