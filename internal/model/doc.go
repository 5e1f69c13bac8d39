package model

// Package model defines domain data structures shared by the player, the map
// and the UI: playlist tracks, the player status enum and display helpers.
// Structures are plain values so they can be bound to widgets directly.
