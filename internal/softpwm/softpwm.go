// Package softpwm generates PWM waveforms on plain output pins by toggling
// them from a periodic runner. Each call to Run is one runner tick; a
// channel's period is Reload ticks and its on-time is Compare ticks.
package softpwm

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"embeddedcli/internal/logger"
)

var (
	// ErrInvalidFrequency is returned for non-positive frequencies.
	ErrInvalidFrequency = errors.New("frequency must be positive")
	// ErrDuplicateChannel is returned when a bank already has the name.
	ErrDuplicateChannel = errors.New("channel already exists")
	// ErrNoChannel is returned when a bank has no channel with the name.
	ErrNoChannel = errors.New("no such channel")
)

// Pin is a digital output.
type Pin interface {
	Write(high bool)
}

// PinFunc adapts a function to Pin.
type PinFunc func(high bool)

// Write calls f(high).
func (f PinFunc) Write(high bool) { f(high) }

// Channel is one PWM output. The zero value is an inactive channel.
type Channel struct {
	Name string
	Pin  Pin

	Reload  uint32
	Compare uint32
	Count   uint32

	Active    bool
	Invert    bool
	DownCount bool

	level bool
}

func (ch *Channel) write(on bool) {
	ch.level = on != ch.Invert
	if ch.Pin != nil {
		ch.Pin.Write(ch.level)
	}
}

// Level returns the level last written to the pin.
func (ch *Channel) Level() bool {
	return ch.level
}

// Tick advances the channel by one runner tick.
func (ch *Channel) Tick() {
	if ch.Reload == 0 || !ch.Active || ch.Compare == 0 {
		ch.write(false)
		return
	}

	if ch.DownCount {
		if ch.Count == 0 {
			ch.Count = ch.Reload - 1
		} else {
			ch.Count = (ch.Count - 1) % ch.Reload
		}
		switch ch.Count {
		case ch.Compare:
			ch.write(true)
		case ch.Reload - 1:
			ch.write(false)
		}
		return
	}

	ch.Count = (ch.Count + 1) % ch.Reload
	switch ch.Count {
	case ch.Compare + 1:
		ch.write(false)
	case 0:
		ch.write(true)
	}
}

// Run ticks every channel once.
func Run(chs []*Channel) {
	for _, ch := range chs {
		ch.Tick()
	}
}

// SetReload sets the period in ticks, clamping Count and Compare to it.
func (ch *Channel) SetReload(reload uint32) {
	ch.Reload = reload
	ch.Count = min(ch.Count, reload)
	ch.Compare = min(ch.Compare, reload)
}

// SetCompare sets the on-time in ticks, clamped to Reload.
func (ch *Channel) SetCompare(compare uint32) {
	ch.Compare = min(compare, ch.Reload)
}

// SetCount moves the counter, clamped to Reload.
func (ch *Channel) SetCount(count uint32) {
	ch.Count = min(count, ch.Reload)
}

// SetFreq derives Reload from the output frequency and the runner frequency,
// both in Hz.
func (ch *Channel) SetFreq(freq, runnerFreq float64) error {
	if freq <= 0 || runnerFreq <= 0 {
		return fmt.Errorf("%w: freq=%g runner=%g", ErrInvalidFrequency, freq, runnerFreq)
	}
	ch.SetReload(uint32(runnerFreq / freq))
	return nil
}

// SetDuty sets the on-time as a percentage of the period, clamped to
// [0, 100], and drives the pin to the level the counter is in.
func (ch *Channel) SetDuty(percent float64) {
	percent = max(0, min(percent, 100))
	ch.Compare = uint32(float64(ch.Reload) * percent / 100)
	ch.write(ch.Count <= ch.Compare)
}

// Duty returns the on-time as a percentage of the period.
func (ch *Channel) Duty() float64 {
	if ch.Reload == 0 {
		return 0
	}
	return float64(ch.Compare) * 100 / float64(ch.Reload)
}

// Bank is a named set of channels sharing one runner frequency.
type Bank struct {
	runnerFreq int
	channels   []*Channel
	log        *log.Logger
}

// NewBank creates an empty bank ticked runnerFreq times per second.
func NewBank(runnerFreq int) *Bank {
	return &Bank{
		runnerFreq: runnerFreq,
		log:        logger.NewStyledLogger("pwm"),
	}
}

// RunnerFreq returns the tick rate the bank was created with.
func (b *Bank) RunnerFreq() int {
	return b.runnerFreq
}

// Add creates an active channel.
func (b *Bank) Add(name string, pin Pin, freq, duty float64, invert, downCount bool) (*Channel, error) {
	if _, err := b.Channel(name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateChannel, name)
	}
	ch := &Channel{Name: name, Pin: pin, Active: true, Invert: invert, DownCount: downCount}
	if err := ch.SetFreq(freq, float64(b.runnerFreq)); err != nil {
		return nil, fmt.Errorf("channel %s: %w", name, err)
	}
	ch.SetDuty(duty)
	b.channels = append(b.channels, ch)
	b.log.Debug("channel added", "channel", name, "reload", ch.Reload, "compare", ch.Compare)
	return ch, nil
}

// Channel looks a channel up by name.
func (b *Bank) Channel(name string) (*Channel, error) {
	for _, ch := range b.channels {
		if ch.Name == name {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoChannel, name)
}

// Channels returns the channels in creation order.
func (b *Bank) Channels() []*Channel {
	return b.channels
}

// Set changes a channel's duty cycle and, when freq is positive, its
// frequency.
func (b *Bank) Set(name string, duty, freq float64) error {
	ch, err := b.Channel(name)
	if err != nil {
		return err
	}
	if freq > 0 {
		if err := ch.SetFreq(freq, float64(b.runnerFreq)); err != nil {
			return err
		}
	}
	ch.SetDuty(duty)
	b.log.Debug("channel updated", "channel", name, "reload", ch.Reload, "compare", ch.Compare)
	return nil
}

// Run ticks every channel of the bank once.
func (b *Bank) Run() {
	Run(b.channels)
}
