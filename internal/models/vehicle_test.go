package models

import "testing"

func TestParseVehicleStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected VehicleStatus
	}{
		{"available", "AVAILABLE", VehicleAvailable},
		{"in use", "IN_USE", VehicleInUse},
		{"out of service", "OUT_OF_SERVICE", VehicleOutOfService},
		{"blocked", "BLOCKED", VehicleBlocked},
		{"unrecognized maps to unknown", "SCRAPPED", VehicleUnknown},
		{"empty maps to unknown", "", VehicleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseVehicleStatus(tt.input); got != tt.expected {
				t.Errorf("ParseVehicleStatus(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestVehicleStatus_Usable(t *testing.T) {
	if !VehicleAvailable.Usable() {
		t.Error("AVAILABLE vehicle should be usable")
	}
	for _, status := range []VehicleStatus{VehicleInUse, VehicleOutOfService, VehicleBlocked, VehicleUnknown} {
		if status.Usable() {
			t.Errorf("%s vehicle should not be usable", status)
		}
	}
}
