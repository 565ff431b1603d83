package models

import (
	"context"
	"sync"
	"time"

	"github.com/slietar/okolab"
)

// ConnectionMsg reports a connection state change of the watched controller.
type ConnectionMsg struct {
	State okolab.State
	Err   error
}

// ChannelReading is one poll of a temperature channel.
type ChannelReading struct {
	Enabled       bool
	DeviceType    int
	Status        okolab.Status
	Temperature   float64
	TemperatureOK bool
	Setpoint      float64
	SetpointMin   float64
	SetpointMax   float64
}

// ControllerReading is one poll of the controller-wide values.
type ControllerReading struct {
	ProductName      string
	SerialNumber     string
	BoardTemperature float64
	Uptime           time.Duration
	Status           okolab.Status
}

// ReadingsMsg carries a completed poll. Err is set when the poll failed,
// in which case the readings keep their previous values.
type ReadingsMsg struct {
	Controller ControllerReading
	Channels   [2]ChannelReading
	At         time.Time
	Err        error
}

// WatchModel holds the shared state of the watch dashboard.
type WatchModel struct {
	device  *okolab.Device
	address string

	state      okolab.State
	err        error
	ready      bool
	controller ControllerReading
	channels   [2]ChannelReading
	lastPoll   time.Time

	selected int // 0 or 1

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
}

func NewWatchModel(address string) *WatchModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &WatchModel{
		address: address,
		state:   okolab.StateDisconnected,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m *WatchModel) GetAddress() string {
	return m.address
}

func (m *WatchModel) GetDevice() *okolab.Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.device
}

func (m *WatchModel) SetDevice(device *okolab.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.device = device
}

func (m *WatchModel) GetState() okolab.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *WatchModel) SetState(state okolab.State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.err = err
}

func (m *WatchModel) GetError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *WatchModel) IsReady() bool {
	return m.ready
}

func (m *WatchModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *WatchModel) GetController() ControllerReading {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controller
}

func (m *WatchModel) GetChannels() [2]ChannelReading {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.channels
}

func (m *WatchModel) GetLastPoll() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastPoll
}

func (m *WatchModel) ApplyReadings(msg ReadingsMsg) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.Err != nil {
		m.err = msg.Err
		return
	}
	m.controller = msg.Controller
	m.channels = msg.Channels
	m.lastPoll = msg.At
	m.err = nil
}

func (m *WatchModel) SelectedChannel() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

func (m *WatchModel) ToggleChannel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = 1 - m.selected
}

func (m *WatchModel) GetContext() context.Context {
	return m.ctx
}

// Poll reads every dashboard value from the controller. It is called from
// a tea.Cmd, never from the update loop.
func (m *WatchModel) Poll() ReadingsMsg {
	device := m.GetDevice()
	if device == nil || !device.Connected() {
		return ReadingsMsg{Err: okolab.ErrDisconnected, At: time.Now()}
	}

	ctx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
	defer cancel()

	var msg ReadingsMsg
	msg.At = time.Now()

	var err error
	if msg.Controller.ProductName, err = device.GetProductName(ctx); err != nil {
		return ReadingsMsg{Err: err, At: msg.At}
	}
	if msg.Controller.SerialNumber, err = device.GetSerialNumber(ctx); err != nil {
		return ReadingsMsg{Err: err, At: msg.At}
	}
	if msg.Controller.BoardTemperature, err = device.GetBoardTemperature(ctx); err != nil {
		return ReadingsMsg{Err: err, At: msg.At}
	}
	if msg.Controller.Uptime, err = device.GetUptime(ctx); err != nil {
		return ReadingsMsg{Err: err, At: msg.At}
	}
	if msg.Controller.Status, err = device.GetStatus(ctx); err != nil {
		return ReadingsMsg{Err: err, At: msg.At}
	}

	if msg.Channels[0], err = pollChannel(ctx, device, 1); err != nil {
		return ReadingsMsg{Err: err, At: msg.At}
	}
	if msg.Channels[1], err = pollChannel(ctx, device, 2); err != nil {
		return ReadingsMsg{Err: err, At: msg.At}
	}

	return msg
}

func pollChannel(ctx context.Context, device *okolab.Device, channel int) (ChannelReading, error) {
	var reading ChannelReading

	getDevice := device.GetDevice1
	getStatus := device.GetStatus1
	getTemperature := device.GetTemperature1
	getSetpoint := device.GetTemperatureSetpoint1
	getRange := device.GetTemperatureSetpointRange1
	if channel == 2 {
		getDevice = device.GetDevice2
		getStatus = device.GetStatus2
		getTemperature = device.GetTemperature2
		getSetpoint = device.GetTemperatureSetpoint2
		getRange = device.GetTemperatureSetpointRange2
	}

	deviceType, enabled, err := getDevice(ctx)
	if err != nil {
		return reading, err
	}
	reading.DeviceType = deviceType
	reading.Enabled = enabled
	if !enabled {
		reading.Status = okolab.StatusDisabled
		return reading, nil
	}

	if reading.Status, err = getStatus(ctx); err != nil {
		return reading, err
	}
	if reading.Temperature, reading.TemperatureOK, err = getTemperature(ctx); err != nil {
		return reading, err
	}
	if reading.Setpoint, err = getSetpoint(ctx); err != nil {
		return reading, err
	}
	if reading.SetpointMin, reading.SetpointMax, err = getRange(ctx); err != nil {
		return reading, err
	}
	return reading, nil
}

// AdjustSetpoint writes a setpoint change for the selected channel,
// clamped to the channel's allowed range.
func (m *WatchModel) AdjustSetpoint(delta float64) error {
	device := m.GetDevice()
	if device == nil || !device.Connected() {
		return okolab.ErrDisconnected
	}

	m.mu.RLock()
	selected := m.selected
	reading := m.channels[selected]
	m.mu.RUnlock()

	if !reading.Enabled {
		return nil
	}

	target := reading.Setpoint + delta
	if reading.SetpointMin != 0 || reading.SetpointMax != 0 {
		if target < reading.SetpointMin {
			target = reading.SetpointMin
		}
		if target > reading.SetpointMax {
			target = reading.SetpointMax
		}
	}

	ctx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
	defer cancel()

	if selected == 0 {
		return device.SetTemperatureSetpoint1(ctx, target)
	}
	return device.SetTemperatureSetpoint2(ctx, target)
}

func (m *WatchModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *WatchModel) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.device != nil {
		m.device.Disconnect()
		m.device = nil
	}
	m.mu.Unlock()
}
