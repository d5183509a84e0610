package sim

import "testing"

func TestProfiles(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		t       float64
		want    float64
	}{
		{"constant", Constant{Value: 100}, 3, 100},
		{"step before", StepChange{Before: 10, After: 20, Time: 1}, 0.5, 10},
		{"step at", StepChange{Before: 10, After: 20, Time: 1}, 1, 20},
		{"square low", Square{Low: 10, High: 20, Period: 2}, 0.5, 10},
		{"square high", Square{Low: 10, High: 20, Period: 2}, 1.5, 20},
		{"square wraps", Square{Low: 10, High: 20, Period: 2}, 2.5, 10},
		{"square without period", Square{Low: 10, High: 20}, 1.5, 10},
		{"adjustable", &Adjustable{Base: Constant{Value: 5}, Offset: 2}, 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.At(tt.t); got != tt.want {
				t.Errorf("At(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}
