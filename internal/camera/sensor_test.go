package camera

import "testing"

func TestSimSensorClampsValues(t *testing.T) {
	tests := []struct {
		name  string
		set   func(s *SimSensor, v int) int
		value int
		want  int
	}{
		{"brightness in range", (*SimSensor).SetBrightness, 1, 1},
		{"brightness above max", (*SimSensor).SetBrightness, 5, 2},
		{"brightness below min", (*SimSensor).SetBrightness, -9, -2},
		{"contrast in range", (*SimSensor).SetContrast, -1, -1},
		{"contrast above max", (*SimSensor).SetContrast, 3, 2},
		{"saturation below min", (*SimSensor).SetSaturation, -100, -2},
		{"quality in range", (*SimSensor).SetQuality, 8, 8},
		{"quality above max", (*SimSensor).SetQuality, 99, 63},
		{"quality below min", (*SimSensor).SetQuality, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimSensor(Params{})
			if got := tt.set(s, tt.value); got != tt.want {
				t.Errorf("set(%d) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestSimSensorStatusReflectsSetters(t *testing.T) {
	s := NewSimSensor(Params{Quality: 8})

	s.SetBrightness(1)
	s.SetContrast(-2)

	got := s.Status()
	if got.Brightness != 1 || got.Contrast != -2 || got.Quality != 8 {
		t.Errorf("Status() = %+v", got)
	}
}

func TestSimSensorApplyClampsAllFields(t *testing.T) {
	s := NewSimSensor(Params{})
	s.Apply(Params{Brightness: 10, Contrast: -10, Saturation: 0, Quality: 200})

	got := s.Status()
	want := Params{Brightness: 2, Contrast: -2, Saturation: 0, Quality: 63}
	if got != want {
		t.Errorf("Status() = %+v, want %+v", got, want)
	}
}
