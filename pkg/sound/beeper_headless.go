//go:build headless

package sound

import "errors"

var ErrNoAudio = errors.New("built without audio support")

// Beeper is unavailable in headless builds.
type Beeper struct {
	*Square
}

func NewBeeper(sampleRate, frequency int) (*Beeper, error) {
	return nil, ErrNoAudio
}

func (b *Beeper) Close() error {
	return nil
}
