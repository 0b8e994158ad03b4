// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name         string
		cfg          Config
		wantBackend  string
		wantFallback bool
		wantErr      bool
	}{
		{
			name:        "memory by default",
			cfg:         Config{DefaultTTL: time.Minute},
			wantBackend: TypeMemory,
		},
		{
			name:        "redis when configured",
			cfg:         Config{Type: TypeRedis, RedisURL: "redis://" + mr.Addr(), DefaultTTL: time.Minute},
			wantBackend: TypeRedis,
		},
		{
			name:         "fallback when redis unreachable",
			cfg:          Config{Type: TypeRedis, RedisURL: "redis://127.0.0.1:1", FallbackToMemory: true},
			wantBackend:  TypeMemory,
			wantFallback: true,
		},
		{
			name:    "error without fallback",
			cfg:     Config{Type: TypeRedis, RedisURL: "redis://127.0.0.1:1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, info, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer func() { _ = c.Close() }()
			if info.Backend != tt.wantBackend || info.IsFallback != tt.wantFallback {
				t.Errorf("Info = %+v, want backend %s fallback %v", info, tt.wantBackend, tt.wantFallback)
			}
		})
	}
}
