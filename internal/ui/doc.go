// Package ui contains the Fyne user interface: the Caucasus map view with its
// markers, overlay and popups, and the docked audio player panel. All UI
// strings are localized via Localization.
package ui
