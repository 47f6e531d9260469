package driver

import "sync"

// AudioMode is what the browser's audio channel is currently doing.
type AudioMode string

const (
	AudioIdle      AudioMode = "idle"
	AudioRecording AudioMode = "recording"
	AudioSpeaking  AudioMode = "speaking"
)

// AudioGate serialises microphone capture and text-to-speech playback.
// The two never overlap: starting one side stops the other.
type AudioGate struct {
	mu   sync.Mutex
	mode AudioMode
}

func NewAudioGate() *AudioGate {
	return &AudioGate{mode: AudioIdle}
}

func (g *AudioGate) Mode() AudioMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// StartRecording switches to recording mode, cutting off any playback in
// progress.
func (g *AudioGate) StartRecording() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = AudioRecording
}

// StopRecording returns to idle only if recording; a stop that races a
// speaking transition does not clobber it.
func (g *AudioGate) StopRecording() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == AudioRecording {
		g.mode = AudioIdle
	}
}

// BeginSpeaking switches to playback mode, cutting off recording.
func (g *AudioGate) BeginSpeaking() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = AudioSpeaking
}

func (g *AudioGate) EndSpeaking() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == AudioSpeaking {
		g.mode = AudioIdle
	}
}

// ReleaseAll force-stops whatever is running. Called on every exit path
// so a closed interview never leaves the microphone held.
func (g *AudioGate) ReleaseAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = AudioIdle
}
