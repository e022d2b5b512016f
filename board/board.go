// Package board holds controller board descriptors: the physical pins a board
// exposes and what each pin can do. Descriptors are grouped in an immutable
// Table that is safe for concurrent readers.
package board

import "strconv"

// PinCapabilities are the electrical features of one physical pin.
type PinCapabilities struct {
	Digital  bool   `toml:"digital" json:"digital,omitempty"`
	Analog   bool   `toml:"analog" json:"analog,omitempty"`
	PWM      bool   `toml:"pwm" json:"pwm,omitempty"`
	Input    bool   `toml:"input" json:"input,omitempty"`
	Output   bool   `toml:"output" json:"output,omitempty"`
	PullUp   bool   `toml:"pullup" json:"pullup,omitempty"`
	PullDown bool   `toml:"pulldown" json:"pulldown,omitempty"`
	Notes    string `toml:"notes" json:"notes,omitempty"`
}

// Labels lists the headline capabilities for display, e.g. ["Digital", "PWM"].
func (c PinCapabilities) Labels() []string {
	var out []string
	if c.Digital {
		out = append(out, "Digital")
	}
	if c.Analog {
		out = append(out, "Analog")
	}
	if c.PWM {
		out = append(out, "PWM")
	}
	return out
}

// Pin is a physical pin of a board.
type Pin struct {
	Name         string          `toml:"name" json:"name"`
	GPIO         int             `toml:"gpio" json:"gpio"`
	Capabilities PinCapabilities `toml:"capabilities" json:"capabilities"`
}

// ID is the pin identifier used in configuration documents ("gpio.N").
func (p Pin) ID() string { return "gpio." + strconv.Itoa(p.GPIO) }

// Capabilities summarize board-wide peripherals.
type Capabilities struct {
	UARTChannels int    `toml:"uart_channels" json:"uart_channels,omitempty"`
	SPIChannels  int    `toml:"spi_channels" json:"spi_channels,omitempty"`
	I2CChannels  int    `toml:"i2c_channels" json:"i2c_channels,omitempty"`
	ADCChannels  int    `toml:"adc_channels" json:"adc_channels,omitempty"`
	DACChannels  int    `toml:"dac_channels" json:"dac_channels,omitempty"`
	PWMChannels  int    `toml:"pwm_channels" json:"pwm_channels,omitempty"`
	TouchPins    int    `toml:"touch_pins" json:"touch_pins,omitempty"`
	FlashSize    string `toml:"flash_size" json:"flash_size,omitempty"`
	RAMSize      string `toml:"ram_size" json:"ram_size,omitempty"`
	CPUFrequency string `toml:"cpu_frequency" json:"cpu_frequency,omitempty"`
	WiFi         bool   `toml:"wifi" json:"wifi,omitempty"`
	Bluetooth    bool   `toml:"bluetooth" json:"bluetooth,omitempty"`
	Ethernet     bool   `toml:"ethernet" json:"ethernet,omitempty"`
	Notes        string `toml:"notes" json:"notes,omitempty"`
}

// Descriptor describes one board.
type Descriptor struct {
	ID           string       `toml:"id" json:"id"`
	Name         string       `toml:"name" json:"name"`
	Description  string       `toml:"description" json:"description,omitempty"`
	Version      string       `toml:"version" json:"version,omitempty"`
	Manufacturer string       `toml:"manufacturer" json:"manufacturer,omitempty"`
	Capabilities Capabilities `toml:"capabilities" json:"capabilities"`
	Pins         []Pin        `toml:"pins" json:"pins"`
	Notes        string       `toml:"notes" json:"notes,omitempty"`
}

// PinByGPIO returns the pin with GPIO number n.
func (d *Descriptor) PinByGPIO(n int) (Pin, bool) {
	for _, p := range d.Pins {
		if p.GPIO == n {
			return p, true
		}
	}
	return Pin{}, false
}
