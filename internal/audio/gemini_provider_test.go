package audio

import (
	"encoding/binary"
	"testing"
)

func TestWrapPCM(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := wrapPCM(pcm, 24000)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("Expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Errorf("Invalid WAV header: %q", wav[:44])
	}
	if size := binary.LittleEndian.Uint32(wav[4:8]); size != uint32(36+len(pcm)) {
		t.Errorf("RIFF size = %d, want %d", size, 36+len(pcm))
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 24000 {
		t.Errorf("Sample rate = %d, want 24000", rate)
	}
	if byteRate := binary.LittleEndian.Uint32(wav[28:32]); byteRate != 48000 {
		t.Errorf("Byte rate = %d, want 48000", byteRate)
	}
	if dataSize := binary.LittleEndian.Uint32(wav[40:44]); dataSize != uint32(len(pcm)) {
		t.Errorf("Data size = %d, want %d", dataSize, len(pcm))
	}
}

func TestSampleRateFromMIME(t *testing.T) {
	tests := []struct {
		mime     string
		expected int
	}{
		{"audio/L16;codec=pcm;rate=24000", 24000},
		{"audio/L16; rate=16000", 16000},
		{"audio/L16", 0},
		{"audio/L16;rate=abc", 0},
	}

	for _, tt := range tests {
		if got := sampleRateFromMIME(tt.mime); got != tt.expected {
			t.Errorf("sampleRateFromMIME(%q) = %d, want %d", tt.mime, got, tt.expected)
		}
	}
}
