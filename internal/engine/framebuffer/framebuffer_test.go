package framebuffer

import "testing"

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h  int
		scale float64
		ww    int32
		wh    int32
	}{
		{1920, 1080, 1, 1920, 1080},
		{1920, 1080, 2, 960, 540},
		{1920, 1080, 1.5, 1280, 720},
		{1, 1, 2, 1, 1},
		{800, 600, 0, 800, 600},
	}
	for _, tt := range tests {
		w, h := ScaledSize(tt.w, tt.h, tt.scale)
		if w != tt.ww || h != tt.wh {
			t.Errorf("ScaledSize(%d, %d, %v) = %d x %d, want %d x %d", tt.w, tt.h, tt.scale, w, h, tt.ww, tt.wh)
		}
	}
}
