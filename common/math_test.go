package common

import "testing"

func approx(a, b float32) bool {
	return approxTol(a, b, 1e-4)
}

func approxTol(a, b, tol float32) bool {
	d := a - b
	return d < tol && d > -tol
}

func TestOrthographicReversedDepth(t *testing.T) {
	proj := make([]float32, 16)
	Orthographic(proj, -10, 10, -5, 5, 1, 101)

	tests := []struct {
		name  string
		point [3]float32
		want  [3]float32
	}{
		{"near center", [3]float32{0, 0, -1}, [3]float32{0, 0, 1}},
		{"far center", [3]float32{0, 0, -101}, [3]float32{0, 0, 0}},
		{"right top near", [3]float32{10, 5, -1}, [3]float32{1, 1, 1}},
		{"left bottom far", [3]float32{-10, -5, -101}, [3]float32{-1, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransformPoint(proj, tt.point[0], tt.point[1], tt.point[2], 1)
			for i := range 3 {
				if !approx(got[i]/got[3], tt.want[i]) {
					t.Fatalf("clip = %v, want ndc %v", got, tt.want)
				}
			}
		})
	}
}

func TestInvert4RoundTrip(t *testing.T) {
	view := make([]float32, 16)
	proj := make([]float32, 16)
	viewProj := make([]float32, 16)
	inv := make([]float32, 16)
	LookAt(view, 100, 200, 150, 100, 0, 149, 0, 1, 0)
	Orthographic(proj, -64, 64, -36, 36, 0.1, 1000)
	Mul4(viewProj, proj, view)

	if !Invert4(inv, viewProj) {
		t.Fatal("Invert4() reported singular matrix")
	}

	world := [3]float32{42, 0, 77}
	clip := TransformPoint(viewProj, world[0], world[1], world[2], 1)
	back := TransformPoint(inv, clip[0], clip[1], clip[2], clip[3])
	for i := range 3 {
		if !approxTol(back[i]/back[3], world[i], 1e-2) {
			t.Fatalf("round trip = %v, want %v", back, world)
		}
	}
}

func TestInvert4Singular(t *testing.T) {
	out := make([]float32, 16)
	if Invert4(out, make([]float32, 16)) {
		t.Error("Invert4() of zero matrix should fail")
	}
}
