package streaming

import "testing"

func TestFixedToFloatScale(t *testing.T) {
	src := []int16{2000, -2000, 1000, 0, 0, 500}
	dst := make([]complex64, 3)
	fixedToFloat(dst, src, 3)

	want := []complex64{complex(1, -1), complex(0.5, 0), complex(0, 0.25)}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestFloatToFixedScale(t *testing.T) {
	src := []complex64{complex(1, -1), complex(0.5, 0.25)}
	dst := make([]int16, 4)
	floatToFixed(dst, src, 2)

	want := []int16{2000, -2000, 1000, 500}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("word %d = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestFloatToFixedTruncates(t *testing.T) {
	src := []complex64{complex(0.00049, -0.00049)}
	dst := make([]int16, 2)
	floatToFixed(dst, src, 1)

	// 0.00049 * 2000 = 0.98, truncated toward zero.
	if dst[0] != 0 || dst[1] != 0 {
		t.Errorf("got (%d, %d), want (0, 0)", dst[0], dst[1])
	}
}

func TestConversionRoundTrip(t *testing.T) {
	src := []int16{1234, -567, 2000, -2000}
	mid := make([]complex64, 2)
	fixedToFloat(mid, src, 2)

	back := make([]int16, 4)
	floatToFixed(back, mid, 2)

	for i := range src {
		if back[i] != src[i] {
			t.Errorf("word %d = %d, want %d", i, back[i], src[i])
		}
	}
}
