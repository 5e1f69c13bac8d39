// Package media plays playlist tracks through the ebiten audio engine and
// reports track events back to the player controller.
package media
