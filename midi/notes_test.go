package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionNoteRoundTrip(t *testing.T) {
	for y := 1; y <= 9; y++ {
		for x := 1; x <= 9; x++ {
			if !OnSurface(x, y) {
				continue
			}
			note := SessionNote(x, y)
			gx, gy := SessionPos(note)
			assert.Equal(t, [2]int{x, y}, [2]int{gx, gy}, "note %d", note)
			assert.True(t, Addressable(note), "note %d", note)
		}
	}
}

func TestSessionNoteLandmarks(t *testing.T) {
	assert.Equal(t, uint8(11), SessionNote(1, 1))
	assert.Equal(t, uint8(88), SessionNote(8, 8))
	assert.Equal(t, uint8(19), SessionNote(9, 1))
	assert.Equal(t, uint8(104), SessionNote(1, 9))
	assert.Equal(t, uint8(ControlMixer), SessionNote(8, 9))
	assert.Equal(t, 8, SelectorVolume.Row())
	assert.Equal(t, 1, SelectorRecordArm.Row())
}

func TestUserOneRoundTrip(t *testing.T) {
	for y := 1; y <= 9; y++ {
		for x := 1; x <= 9; x++ {
			if !OnSurface(x, y) {
				continue
			}
			note := UserOneNote(x, y)
			gx, gy := UserOnePos(note, y == 9)
			assert.Equal(t, [2]int{x, y}, [2]int{gx, gy}, "note %d", note)
		}
	}

	assert.Equal(t, uint8(36), UserOneNote(1, 1))
	assert.Equal(t, uint8(99), UserOneNote(8, 8))
	assert.Equal(t, uint8(107), UserOneNote(9, 1))
	assert.Equal(t, uint8(100), UserOneNote(9, 8))
}

func TestUserOneSharedNumbers(t *testing.T) {
	x, y := UserOnePos(104, false)
	assert.Equal(t, 9, x)
	assert.Equal(t, 4, y)

	x, y = UserOnePos(104, true)
	assert.Equal(t, 1, x)
	assert.Equal(t, 9, y)
}

func TestOnPad(t *testing.T) {
	count := 0
	for n := 0; n < 128; n++ {
		if OnPad(uint8(n)) {
			count++
			x, y := SessionPos(uint8(n))
			assert.True(t, x >= 1 && x <= 8 && y >= 1 && y <= 8, "note %d", n)
		}
	}
	assert.Equal(t, 64, count)

	assert.False(t, OnPad(19))
	assert.False(t, OnPad(89))
	assert.False(t, OnPad(10))
	assert.False(t, OnPad(104))
}

func TestAddressable(t *testing.T) {
	for _, n := range []uint8{0, 10, 20, 90, 99, 103, 112, 127} {
		assert.False(t, Addressable(n), "note %d", n)
	}
	for _, n := range []uint8{11, 19, 89, 104, 111} {
		assert.True(t, Addressable(n), "note %d", n)
	}
}

func TestAddVector(t *testing.T) {
	assert.Equal(t, uint8(22), AddVector(11, 1, 1))
	assert.Equal(t, uint8(78), AddVector(88, 0, -1))
	assert.Equal(t, uint8(19), AddVector(18, 1, 0))
	assert.False(t, OnPad(AddVector(18, 1, 0)))
}
