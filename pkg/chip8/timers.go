package chip8

// TimerHz is the fixed rate at which Tick should be called.
const TimerHz = 60

// SoundDevice plays a tone while the sound timer is nonzero. Both methods
// must return immediately.
type SoundDevice interface {
	Start()
	Stop()
}

// Timers holds the delay and sound countdown registers.
type Timers struct {
	delay   byte
	sound   byte
	device  SoundDevice
	playing bool
}

func NewTimers(device SoundDevice) *Timers {
	if device == nil {
		device = silentDevice{}
	}
	return &Timers{device: device}
}

func (t *Timers) Delay() byte {
	return t.delay
}

func (t *Timers) Sound() byte {
	return t.sound
}

func (t *Timers) SetDelay(v byte) {
	t.delay = v
}

// SetSound loads the sound timer. The device starts when the timer goes from
// zero to nonzero and stops when it is set back to zero.
func (t *Timers) SetSound(v byte) {
	prev := t.sound
	t.sound = v
	switch {
	case prev == 0 && v > 0:
		t.start()
	case v == 0:
		t.stop()
	}
}

// Tick decrements both timers once, stopping the tone when the sound timer
// reaches zero.
func (t *Timers) Tick() {
	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
		if t.sound == 0 {
			t.stop()
		}
	}
}

func (t *Timers) start() {
	if !t.playing {
		t.playing = true
		t.device.Start()
	}
}

func (t *Timers) stop() {
	if t.playing {
		t.playing = false
		t.device.Stop()
	}
}

type silentDevice struct{}

func (silentDevice) Start() {}
func (silentDevice) Stop()  {}
