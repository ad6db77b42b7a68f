package cli

import (
	"reflect"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Backend", flags.Backend, "azure"},
		{"LogLevel", flags.LogLevel, "info"},
		{"CacheDir", flags.CacheDir, "."},
		{"CfgFile", flags.CfgFile, ""},
		{"SkipHeader", flags.SkipHeader, false},
		{"CSV", flags.CSV, false},
		{"LogJSON", flags.LogJSON, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}
