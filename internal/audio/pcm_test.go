package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestPCM16Layout(t *testing.T) {
	buf := PCM16([][2]float64{{1, -1}, {1e6, -1e6}, {100.9, -100.9}, {math.NaN(), 0}})
	if len(buf) != 16 {
		t.Fatalf("len = %d, want 16", len(buf))
	}
	want := []int16{1, -1, math.MaxInt16, math.MinInt16, 100, -100, 0, 0}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		if got != w {
			t.Fatalf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestPCM16Empty(t *testing.T) {
	if len(PCM16(nil)) != 0 {
		t.Fatalf("empty input should give empty output")
	}
}
