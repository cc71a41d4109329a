package interp

// Linear2 interpolates between x0 and x1 at position t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + c0
}

// Table reads curve at a continuous index using linear interpolation.
// Indexes outside the table clamp to the first or last entry.
func Table(curve []float64, index float64) float64 {
	n := len(curve)
	if n == 0 {
		return 0
	}

	if index <= 0 {
		return curve[0]
	}

	last := float64(n - 1)
	if index >= last {
		return curve[n-1]
	}

	i := int(index)

	return Linear2(index-float64(i), curve[i], curve[i+1])
}
