// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleChef, true},
		{RoleService, true},
		{RolePurchaser, true},
		{RoleProducer, true},
		{"ADMIN", false},
		{"", false},
		{"chef", false},
	}

	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestPageValid(t *testing.T) {
	tests := []struct {
		name    string
		page    Page[int]
		wantErr bool
	}{
		{
			name: "first of three",
			page: Page[int]{Content: []int{1, 2}, Size: 2, TotalPages: 3, Number: 0, First: true},
		},
		{
			name: "empty result",
			page: Page[int]{Size: 20, TotalPages: 0, Number: 0, Empty: true, First: true, Last: true},
		},
		{
			name:    "content exceeds size",
			page:    Page[int]{Content: []int{1, 2, 3}, Size: 2, TotalPages: 2},
			wantErr: true,
		},
		{
			name:    "number past last page",
			page:    Page[int]{Content: []int{1}, Size: 2, TotalPages: 2, Number: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.page.Valid()
			if (err != nil) != tt.wantErr {
				t.Errorf("Valid() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPageNavigation(t *testing.T) {
	p := Page[int]{Number: 1, TotalPages: 3}
	if !p.HasNext() || !p.HasPrev() {
		t.Errorf("middle page: HasNext=%v HasPrev=%v", p.HasNext(), p.HasPrev())
	}

	last := Page[int]{Number: 2, TotalPages: 3, Last: true}
	if last.HasNext() {
		t.Error("last page reports a next page")
	}
}

func TestLocalTimeUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2025-03-01T10:20:30"`, time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{`"2025-03-01T10:20:30.123456"`, time.Date(2025, 3, 1, 10, 20, 30, 123456000, time.UTC)},
		{`"2025-03-01T10:20:30Z"`, time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{`"2025-03-01"`, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{`null`, time.Time{}},
	}

	for _, tt := range tests {
		var lt LocalTime
		if err := json.Unmarshal([]byte(tt.in), &lt); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
		}
		if !lt.Equal(tt.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, lt.Time, tt.want)
		}
	}

	var lt LocalTime
	if err := json.Unmarshal([]byte(`"yesterday"`), &lt); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestDecimalUnmarshal(t *testing.T) {
	var s FeedbackSummary
	if err := json.Unmarshal([]byte(`{"avgSatisfaction":4.25,"avgEmotion":"3.50"}`), &s); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if s.AvgSatisfaction != "4.25" {
		t.Errorf("AvgSatisfaction = %q, want 4.25", s.AvgSatisfaction)
	}
	if s.AvgEmotion == nil || s.AvgEmotion.Float() != 3.5 {
		t.Errorf("AvgEmotion = %v, want 3.50", s.AvgEmotion)
	}
}
