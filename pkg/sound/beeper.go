//go:build !headless

package sound

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays a Square through oto. Only one oto context may exist per
// process, so create a single Beeper and share it.
type Beeper struct {
	*Square

	ctx    *oto.Context
	player *oto.Player
	mu     sync.Mutex
}

// NewBeeper opens the audio device and starts a player that streams the gated
// square wave. It blocks until the device is ready.
func NewBeeper(sampleRate, frequency int) (*Beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	b := &Beeper{
		Square: NewSquare(sampleRate, frequency),
		ctx:    ctx,
	}
	b.player = ctx.NewPlayer(b.Square)
	b.player.Play()
	return b, nil
}

func (b *Beeper) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Stop()
	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil
	return err
}
