package models

import "testing"

func TestCheck_Outcome(t *testing.T) {
	tests := []struct {
		name     string
		items    []CheckItem
		expected CheckStatus
	}{
		{"no items", nil, CheckPending},
		{"all items pass", []CheckItem{
			{Name: "brakes", Passed: true},
			{Name: "horn", Passed: true},
			{Name: "forks", Passed: true},
		}, CheckApproved},
		{"one item fails", []CheckItem{
			{Name: "brakes", Passed: true},
			{Name: "hydraulics", Passed: false, Comment: "slow lift"},
		}, CheckRejected},
		{"single passing item", []CheckItem{
			{Name: "tires", Passed: true},
		}, CheckApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := &Check{Items: tt.items}
			if got := check.Outcome(); got != tt.expected {
				t.Errorf("Outcome() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsValidCheckStatus(t *testing.T) {
	for _, status := range []CheckStatus{CheckPending, CheckApproved, CheckRejected} {
		if !IsValidCheckStatus(status) {
			t.Errorf("%s should be a valid check status", status)
		}
	}
	if IsValidCheckStatus("DRAFT") {
		t.Error("DRAFT should not be a valid check status")
	}
}
