// Package mathutil holds the numeric helpers the algorithms share: normal
// sampling, the Gamma function and Lévy-stable step generation.
package mathutil

import "math"

// Uniform is a source of uniform draws in [0, 1).
type Uniform interface {
	Next() float64
}

// lanczosG and lanczosCoef are the g=7, n=9 Lanczos parameters.
const lanczosG = 7.0

var lanczosCoef = [...]float64{
	0.99999999999980993,
	676.5203681218851,
	-1259.1392167224028,
	771.32342877765313,
	-176.61502916214059,
	12.507343278686905,
	-0.13857109526572012,
	9.9843695780195716e-6,
	1.5056327351493116e-7,
}

// NormalRandom returns a standard normal sample using the Box-Muller
// transform. Zero draws are rejected since log(0) is undefined.
func NormalRandom(u Uniform) float64 {
	a := u.Next()
	for a == 0 {
		a = u.Next()
	}
	b := u.Next()
	for b == 0 {
		b = u.Next()
	}
	return math.Sqrt(-2*math.Log(a)) * math.Cos(2*math.Pi*b)
}

// Gamma approximates Γ(z) with the Lanczos series. Arguments below 0.5 go
// through the reflection formula.
func Gamma(z float64) float64 {
	if z < 0.5 {
		return math.Pi / (math.Sin(math.Pi*z) * Gamma(1-z))
	}
	z--
	x := lanczosCoef[0]
	for i := 1; i < len(lanczosCoef); i++ {
		x += lanczosCoef[i] / (z + float64(i))
	}
	t := z + lanczosG + 0.5
	return math.Sqrt(2*math.Pi) * math.Pow(t, z+0.5) * math.Exp(-t) * x
}

// MantegnaSigma returns the scale of the numerator normal in Mantegna's
// algorithm for stability index beta.
func MantegnaSigma(beta float64) float64 {
	num := Gamma(1+beta) * math.Sin(math.Pi*beta/2)
	den := Gamma((1+beta)/2) * beta * math.Pow(2, (beta-1)/2)
	return math.Pow(num/den, 1/beta)
}

// LevyStep draws one heavy-tailed step length: N(0, sigma²) / |N(0,1)|^(1/beta).
func LevyStep(u Uniform, beta, sigma float64) float64 {
	num := NormalRandom(u) * sigma
	den := NormalRandom(u)
	return num / math.Pow(math.Abs(den), 1/beta)
}

// WeightedIndex picks an index with probability proportional to its weight.
// If the draw falls through (zero or NaN total), the last index is returned.
func WeightedIndex(u Uniform, weights []float64) int {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	r := u.Next() * sum
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}
