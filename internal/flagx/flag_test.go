package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value kept",
			args:    []string{"-d", "data", "-x", "junk"},
			allowed: []string{"-d"},
			want:    []string{"-d", "data"},
		},
		{
			name:    "equals form kept",
			args:    []string{"--timeout=8h", "-v"},
			allowed: []string{"--timeout"},
			want:    []string{"--timeout=8h"},
		},
		{
			name:    "unknown flags dropped",
			args:    []string{"-a", "1", "-b", "2"},
			allowed: []string{"-z"},
			want:    []string{},
		},
		{
			name:    "flag followed by another flag keeps no value",
			args:    []string{"-d", "-t", "1m"},
			allowed: []string{"-d", "-t"},
			want:    []string{"-d", "-t", "1m"},
		},
		{
			name:    "empty input",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.Equal(t, tt.want, got)
		})
	}
}
