package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/andrevmm/ondeestou/internal/logger"
)

// Player plays synthesized WAV announcements through the system audio
// device via oto.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer initializes the system audio context. Returns an error when
// no audio device is available, in which case the speaker falls back to
// text output.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("player: audio initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play plays WAV audio synchronously. Blocks until playback finishes or
// Stop is called. One announcement plays at a time; the speaker loop is
// the only caller.
func (p *Player) Play(wavData []byte) error {
	pcm, err := extractPCM(wavData)
	if err != nil {
		return err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("player: playing %d bytes of PCM", len(pcm))

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the current announcement, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("player: interrupted")
	}
}

// extractPCM strips the WAV/RIFF header and returns the raw PCM payload.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	// Walk chunks to find "data".
	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if chunkID == "data" {
			start := pos + 8
			end := start + chunkSize
			if end > len(wav) {
				end = len(wav)
			}
			return wav[start:end], nil
		}

		pos += 8 + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, errors.New("data chunk not found in WAV")
}
