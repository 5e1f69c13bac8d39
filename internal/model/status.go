package model

// PlayerStatus represents the transport state of the audio player
type PlayerStatus string

const (
	// PlayerStatusIdle means nothing has been requested yet
	PlayerStatusIdle PlayerStatus = "Idle"

	// PlayerStatusLoading means a play request is in flight
	PlayerStatusLoading PlayerStatus = "Loading"

	// PlayerStatusPlaying means the active track is playing
	PlayerStatusPlaying PlayerStatus = "Playing"

	// PlayerStatusPaused means the active track is paused by the user
	PlayerStatusPaused PlayerStatus = "Paused"

	// PlayerStatusDragging means the user is scrubbing the progress bar
	PlayerStatusDragging PlayerStatus = "Dragging"
)

// String returns the string representation of PlayerStatus
func (ps PlayerStatus) String() string {
	return string(ps)
}

// IsActive returns true if audio is playing or about to play
func (ps PlayerStatus) IsActive() bool {
	return ps == PlayerStatusLoading || ps == PlayerStatusPlaying
}
