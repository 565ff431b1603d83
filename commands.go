package okolab

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Status is the operating condition reported by the controller, either for
// the unit as a whole or for one of its two channels.
type Status int

const (
	StatusOk Status = iota
	StatusTransient
	StatusAlarm
	StatusError
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusTransient:
		return "Transient"
	case StatusAlarm:
		return "Alarm"
	case StatusError:
		return "Error"
	case StatusDisabled:
		return "Disabled"
	}
	return "Unknown"
}

// Side selects the plate side for metal-glass plates.
type Side int

const (
	SideUnspecified Side = iota
	SideGlass
	SideMetal
)

// Temperature setpoints are accepted by the controller between 25°C and
// 60°C, with 0.1°C precision.
const (
	SetpointMin = 25.0
	SetpointMax = 60.0
)

// timeLayout is the clock format used by commands 070/071.
const timeLayout = "01/02/2006 15:04:05"

var uptimePattern = regexp.MustCompile(`^(\d+) d, (\d\d):(\d\d):(\d\d)$`)

func (d *Device) requestFloat(ctx context.Context, command string) (float64, error) {
	res, err := d.Submit(ctx, command, "")
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(res, 64)
	if err != nil {
		return 0, fmt.Errorf("okolab: unexpected response %q to command %s", res, command)
	}
	return value, nil
}

func (d *Device) requestInt(ctx context.Context, command string) (int, error) {
	res, err := d.Submit(ctx, command, "")
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(res)
	if err != nil {
		return 0, fmt.Errorf("okolab: unexpected response %q to command %s", res, command)
	}
	return value, nil
}

// GetProductName returns the controller's product name.
func (d *Device) GetProductName(ctx context.Context) (string, error) {
	return d.Submit(ctx, "017", "")
}

// GetSerialNumber returns the controller's serial number.
func (d *Device) GetSerialNumber(ctx context.Context) (string, error) {
	return d.Submit(ctx, "018", "")
}

// GetBoardTemperature returns the temperature of the controller's board,
// in Celsius degrees.
func (d *Device) GetBoardTemperature(ctx context.Context) (float64, error) {
	return d.requestFloat(ctx, "026")
}

// GetUptime returns the uptime of the controller.
func (d *Device) GetUptime(ctx context.Context) (time.Duration, error) {
	res, err := d.Submit(ctx, "025", "")
	if err != nil {
		return 0, err
	}

	match := uptimePattern.FindStringSubmatch(res)
	if match == nil {
		return 0, fmt.Errorf("okolab: unexpected response %q to command 025", res)
	}

	days, _ := strconv.Atoi(match[1])
	hours, _ := strconv.Atoi(match[2])
	minutes, _ := strconv.Atoi(match[3])
	seconds, _ := strconv.Atoi(match[4])

	return time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second, nil
}

// GetTime returns the time on the controller's clock.
func (d *Device) GetTime(ctx context.Context) (time.Time, error) {
	res, err := d.Submit(ctx, "070", "")
	if err != nil {
		return time.Time{}, err
	}
	value, err := time.Parse(timeLayout, res)
	if err != nil {
		return time.Time{}, fmt.Errorf("okolab: unexpected response %q to command 070", res)
	}
	return value, nil
}

// SetTime sets the time on the controller's clock.
func (d *Device) SetTime(ctx context.Context, t time.Time) error {
	_, err := d.Submit(ctx, "071", t.Format(timeLayout))
	return err
}

// GetDevice1 returns the type id number of device 1. ok is false when the
// channel is disabled.
func (d *Device) GetDevice1(ctx context.Context) (deviceType int, ok bool, err error) {
	return d.getDevice(ctx, "111")
}

// GetDevice2 returns the type id number of device 2. ok is false when the
// channel is disabled.
func (d *Device) GetDevice2(ctx context.Context) (deviceType int, ok bool, err error) {
	return d.getDevice(ctx, "113")
}

func (d *Device) getDevice(ctx context.Context, command string) (int, bool, error) {
	value, err := d.requestInt(ctx, command)
	if err != nil {
		return 0, false, err
	}
	if value < 0 {
		return 0, false, nil
	}
	return value, true, nil
}

// SetDevice1 sets the type id number of device 1. A negative deviceType
// disables the channel. The side is relevant only for metal-glass plates
// and is not transmitted when SideUnspecified.
func (d *Device) SetDevice1(ctx context.Context, deviceType int, side Side) error {
	return d.setDevice(ctx, "112", "116", deviceType, side)
}

// SetDevice2 sets the type id number of device 2.
func (d *Device) SetDevice2(ctx context.Context, deviceType int, side Side) error {
	return d.setDevice(ctx, "114", "118", deviceType, side)
}

func (d *Device) setDevice(ctx context.Context, typeCmd, sideCmd string, deviceType int, side Side) error {
	if deviceType < 0 {
		deviceType = -1
	}
	if _, err := d.Submit(ctx, typeCmd, strconv.Itoa(deviceType)); err != nil {
		return err
	}
	if side != SideUnspecified {
		if _, err := d.Submit(ctx, sideCmd, strconv.Itoa(int(side))); err != nil {
			return err
		}
	}
	return nil
}

// GetTemperature1 returns the observed temperature of device 1, in Celsius
// degrees. ok is false when the channel is disabled or the probe is open.
func (d *Device) GetTemperature1(ctx context.Context) (value float64, ok bool, err error) {
	return d.getTemperature(ctx, "001")
}

// GetTemperature2 returns the observed temperature of device 2.
func (d *Device) GetTemperature2(ctx context.Context) (value float64, ok bool, err error) {
	return d.getTemperature(ctx, "037")
}

func (d *Device) getTemperature(ctx context.Context, command string) (float64, bool, error) {
	res, err := d.Submit(ctx, command, "")
	if err != nil {
		return 0, false, err
	}
	if res == "OFF" || res == "OPEN" {
		return 0, false, nil
	}
	value, err := strconv.ParseFloat(res, 64)
	if err != nil {
		return 0, false, fmt.Errorf("okolab: unexpected response %q to command %s", res, command)
	}
	return value, true, nil
}

// GetTemperatureSetpoint1 returns the temperature setpoint of device 1,
// in Celsius degrees.
func (d *Device) GetTemperatureSetpoint1(ctx context.Context) (float64, error) {
	return d.requestFloat(ctx, "002")
}

// GetTemperatureSetpoint2 returns the temperature setpoint of device 2.
func (d *Device) GetTemperatureSetpoint2(ctx context.Context) (float64, error) {
	return d.requestFloat(ctx, "067")
}

// SetTemperatureSetpoint1 sets the temperature setpoint of device 1. The
// value must lie within [SetpointMin, SetpointMax].
func (d *Device) SetTemperatureSetpoint1(ctx context.Context, value float64) error {
	return d.setSetpoint(ctx, "008", value)
}

// SetTemperatureSetpoint2 sets the temperature setpoint of device 2.
func (d *Device) SetTemperatureSetpoint2(ctx context.Context, value float64) error {
	return d.setSetpoint(ctx, "063", value)
}

func (d *Device) setSetpoint(ctx context.Context, command string, value float64) error {
	if value < SetpointMin || value > SetpointMax {
		return &EncodingError{
			Command: command,
			Reason:  fmt.Sprintf("setpoint %.1f outside [%.1f, %.1f]", value, SetpointMin, SetpointMax),
		}
	}
	_, err := d.Submit(ctx, command, strconv.FormatFloat(value, 'f', 1, 64))
	return err
}

// GetTemperatureSetpointRange1 returns the admissible setpoint range of
// device 1.
func (d *Device) GetTemperatureSetpointRange1(ctx context.Context) (min, max float64, err error) {
	return d.getSetpointRange(ctx, "005", "006")
}

// GetTemperatureSetpointRange2 returns the admissible setpoint range of
// device 2.
func (d *Device) GetTemperatureSetpointRange2(ctx context.Context) (min, max float64, err error) {
	return d.getSetpointRange(ctx, "068", "069")
}

func (d *Device) getSetpointRange(ctx context.Context, minCmd, maxCmd string) (float64, float64, error) {
	min, err := d.requestFloat(ctx, minCmd)
	if err != nil {
		return 0, 0, err
	}
	max, err := d.requestFloat(ctx, maxCmd)
	if err != nil {
		return 0, 0, err
	}
	return min, max, nil
}

// GetStatus returns the overall status of the controller.
func (d *Device) GetStatus(ctx context.Context) (Status, error) {
	return d.getStatus(ctx, "110")
}

// GetStatus1 returns the status of device 1.
func (d *Device) GetStatus1(ctx context.Context) (Status, error) {
	return d.getStatus(ctx, "004")
}

// GetStatus2 returns the status of device 2.
func (d *Device) GetStatus2(ctx context.Context) (Status, error) {
	return d.getStatus(ctx, "039")
}

func (d *Device) getStatus(ctx context.Context, command string) (Status, error) {
	value, err := d.requestInt(ctx, command)
	if err != nil {
		return 0, err
	}
	return Status(value), nil
}
