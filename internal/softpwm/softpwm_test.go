package softpwm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a pin that remembers every write.
type recorder struct {
	writes []bool
}

func (r *recorder) Write(high bool) {
	r.writes = append(r.writes, high)
}

func TestTick_IdleLevel(t *testing.T) {
	tests := []struct {
		name string
		ch   Channel
		want bool
	}{
		{"inactive", Channel{Reload: 4, Compare: 2}, false},
		{"inactive inverted", Channel{Reload: 4, Compare: 2, Invert: true}, true},
		{"zero reload", Channel{Active: true, Compare: 2}, false},
		{"zero compare", Channel{Active: true, Reload: 4}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pin := &recorder{}
			ch := tt.ch
			ch.Pin = pin
			ch.Tick()
			assert.Equal(t, []bool{tt.want}, pin.writes)
			assert.Equal(t, tt.want, ch.Level())
		})
	}
}

func TestTick_CountUp(t *testing.T) {
	pin := &recorder{}
	ch := &Channel{Pin: pin, Reload: 4, Compare: 2, Active: true}

	for i := 0; i < 8; i++ {
		ch.Tick()
	}
	// Off when the counter passes Compare, on when it wraps to zero.
	assert.Equal(t, []bool{false, true, false, true}, pin.writes)
	assert.Equal(t, uint32(0), ch.Count)
}

func TestTick_CountUpInverted(t *testing.T) {
	pin := &recorder{}
	ch := &Channel{Pin: pin, Reload: 4, Compare: 2, Active: true, Invert: true}

	for i := 0; i < 4; i++ {
		ch.Tick()
	}
	assert.Equal(t, []bool{true, false}, pin.writes)
}

func TestTick_CountDown(t *testing.T) {
	pin := &recorder{}
	ch := &Channel{Pin: pin, Reload: 4, Compare: 1, Active: true, DownCount: true}

	for i := 0; i < 5; i++ {
		ch.Tick()
	}
	assert.Equal(t, []bool{false, true, false}, pin.writes)
	assert.Equal(t, uint32(3), ch.Count)
}

func TestTick_CountDownReloadsFromZero(t *testing.T) {
	ch := &Channel{Reload: 10, Compare: 3, Active: true, DownCount: true}

	ch.Tick()
	assert.Equal(t, uint32(9), ch.Count, "reloads to the top of the period")
	ch.Tick()
	assert.Equal(t, uint32(8), ch.Count)
}

func TestRun(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	chs := []*Channel{
		{Pin: a},
		{Pin: b, Reload: 2, Compare: 1, Active: true},
	}

	Run(chs)
	Run(chs)
	assert.Len(t, a.writes, 2, "inactive channel is driven idle every tick")
	assert.Equal(t, []bool{true}, b.writes)
}

func TestSetters_Clamp(t *testing.T) {
	ch := &Channel{Reload: 10}

	ch.SetCompare(20)
	assert.Equal(t, uint32(10), ch.Compare)
	ch.SetCount(15)
	assert.Equal(t, uint32(10), ch.Count)

	ch.SetReload(5)
	assert.Equal(t, uint32(5), ch.Compare)
	assert.Equal(t, uint32(5), ch.Count)
}

func TestSetFreq(t *testing.T) {
	ch := &Channel{}

	require.NoError(t, ch.SetFreq(4, 100))
	assert.Equal(t, uint32(25), ch.Reload)

	assert.ErrorIs(t, ch.SetFreq(0, 100), ErrInvalidFrequency)
	assert.ErrorIs(t, ch.SetFreq(1, 0), ErrInvalidFrequency)
	assert.Equal(t, uint32(25), ch.Reload)
}

func TestSetDuty(t *testing.T) {
	tests := []struct {
		percent     float64
		wantCompare uint32
	}{
		{50, 10},
		{150, 20},
		{-5, 0},
		{12.5, 2},
	}

	for _, tt := range tests {
		pin := &recorder{}
		ch := &Channel{Pin: pin, Reload: 20, Count: 5}
		ch.SetDuty(tt.percent)
		assert.Equal(t, tt.wantCompare, ch.Compare, "duty %g", tt.percent)
		assert.Equal(t, []bool{ch.Count <= ch.Compare}, pin.writes)
	}

	ch := &Channel{Reload: 20}
	ch.SetDuty(25)
	assert.InDelta(t, 25.0, ch.Duty(), 0.001)
	assert.Zero(t, (&Channel{}).Duty())
}

func TestBank(t *testing.T) {
	bank := NewBank(100)
	pin := &recorder{}

	ch, err := bank.Add("led0", pin, 10, 50, false, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), ch.Reload)
	assert.Equal(t, uint32(5), ch.Compare)
	assert.True(t, ch.Active)

	_, err = bank.Add("led0", nil, 10, 50, false, false)
	assert.ErrorIs(t, err, ErrDuplicateChannel)
	_, err = bank.Add("bad", nil, 0, 50, false, false)
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	require.NoError(t, bank.Set("led0", 20, 20))
	assert.Equal(t, uint32(5), ch.Reload)
	assert.Equal(t, uint32(1), ch.Compare)
	assert.ErrorIs(t, bank.Set("missing", 10, 0), ErrNoChannel)

	before := len(pin.writes)
	for i := 0; i < int(ch.Reload); i++ {
		bank.Run()
	}
	assert.Greater(t, len(pin.writes), before)
	assert.Len(t, bank.Channels(), 1)
	assert.Equal(t, 100, bank.RunnerFreq())
}
