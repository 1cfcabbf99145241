package lightshow

import (
	"fmt"
	"io"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-lightshow/midi"
)

// At 60 bpm and 1000 ticks per quarter note one tick is one millisecond.
const (
	smfResolution = 1000
	smfTempo      = 60
)

// SMF renders the animation as a single-track Standard MIDI File. Each
// frame's change is written after its wait, so a DAW or player routing the
// file to a Launchpad replays the animation.
func (a *Animation) SMF() (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(smfResolution)

	var track smf.Track
	track.Add(0, smf.MetaTempo(smfTempo))

	var delta uint32
	for i := range a.frames {
		delta += uint32(a.frames[i].Duration.Milliseconds())
		for _, action := range a.FrameDelta(i-1, i) {
			for _, msg := range midi.Encode(action) {
				track.Add(delta, msg.Bytes())
				delta = 0
			}
		}
	}
	track.Close(delta)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("add track: %w", err)
	}
	return s, nil
}

// WriteSMF writes the animation to w as a Standard MIDI File.
func (a *Animation) WriteSMF(w io.Writer) error {
	s, err := a.SMF()
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fault.Wrap(err, fmsg.With("write midi file"))
	}
	return nil
}

// ExportSMF writes the animation to a .mid file at path.
func (a *Animation) ExportSMF(path string) error {
	s, err := a.SMF()
	if err != nil {
		return err
	}
	if err := s.WriteFile(path); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("write midi file", fmt.Sprintf("Could not write %s", path)))
	}
	return nil
}
