package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{name: "all flags", args: []string{"-a", "https://photos.example", "-d", "c.db", "-l", "warn", "-t", "10"},
			expected: &Config{ServerURL: "https://photos.example", DatabasePath: "c.db", LogLevel: "warn", RequestTimeout: 10 * time.Second}},
		{name: "equals form and unknown flags", args: []string{"-x", "1", "-a=http://h:1", "-c", "ignored.json"},
			expected: &Config{ServerURL: "http://h:1"}},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)

			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
