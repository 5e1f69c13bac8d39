package player

// Package player implements the playlist transport controller: one active
// track at a time, play/pause/next/prev, drag-to-seek and a volume shared by
// every track. Playback itself is delegated to Media implementations so the
// state machine can be driven headlessly in tests.
