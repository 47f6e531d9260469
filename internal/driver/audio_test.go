package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudioGateExclusivity(t *testing.T) {
	gate := NewAudioGate()
	assert.Equal(t, AudioIdle, gate.Mode())

	gate.StartRecording()
	assert.Equal(t, AudioRecording, gate.Mode())

	// playback cuts off recording
	gate.BeginSpeaking()
	assert.Equal(t, AudioSpeaking, gate.Mode())

	// a late stop from the recording side does not clobber playback
	gate.StopRecording()
	assert.Equal(t, AudioSpeaking, gate.Mode())

	gate.EndSpeaking()
	assert.Equal(t, AudioIdle, gate.Mode())
}

func TestAudioGateReleaseAll(t *testing.T) {
	gate := NewAudioGate()

	gate.StartRecording()
	gate.ReleaseAll()
	assert.Equal(t, AudioIdle, gate.Mode())

	gate.BeginSpeaking()
	gate.ReleaseAll()
	assert.Equal(t, AudioIdle, gate.Mode())
}
