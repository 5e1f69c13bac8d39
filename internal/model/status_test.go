package model

import "testing"

func TestPlayerStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   PlayerStatus
		expected bool
	}{
		{PlayerStatusIdle, false},
		{PlayerStatusLoading, true},
		{PlayerStatusPlaying, true},
		{PlayerStatusPaused, false},
		{PlayerStatusDragging, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("PlayerStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestPlayerStatus_String(t *testing.T) {
	status := PlayerStatusDragging
	expected := "Dragging"
	result := status.String()

	if result != expected {
		t.Errorf("PlayerStatus.String() = %s, expected %s", result, expected)
	}
}
