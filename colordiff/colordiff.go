package colordiff

import (
	"fmt"
	"math"
)

// Func is a function type for color-difference calculation between two Lab
// vectors (L*, a*, b*). Implementations must be symmetric, non-negative and
// zero for identical inputs. Vectors are assumed to be the same length
// (caller's responsibility).
type Func func(a, b []float64) float64

// Metric represents a named color-difference formula.
type Metric int

const (
	MetricCIE76 Metric = iota
	MetricCIE94
	MetricCIEDE2000
)

func (m Metric) String() string {
	switch m {
	case MetricCIE76:
		return "CIE76"
	case MetricCIE94:
		return "CIE94"
	case MetricCIEDE2000:
		return "CIEDE2000"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Provider returns the difference function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricCIE76:
		return CIE76, nil
	case MetricCIE94:
		return CIE94, nil
	case MetricCIEDE2000:
		return CIEDE2000, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// CIE76 is the plain Euclidean distance in Lab space.
func CIE76(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CIE94 implements the CIE 1994 color difference with graphic-arts weights
// (kL=1, K1=0.045, K2=0.015).
func CIE94(lab1, lab2 []float64) float64 {
	dL := lab1[0] - lab2[0]
	c1 := math.Hypot(lab1[1], lab1[2])
	c2 := math.Hypot(lab2[1], lab2[2])
	dC := c1 - c2

	da := lab1[1] - lab2[1]
	db := lab1[2] - lab2[2]
	dhSq := da*da + db*db - dC*dC
	var dh float64
	if dhSq > 0 {
		dh = math.Sqrt(dhSq)
	}

	sc := 1.0 + 0.045*c1
	sh := 1.0 + 0.015*c1

	return math.Sqrt(dL*dL + (dC/sc)*(dC/sc) + (dh/sh)*(dh/sh))
}

func deg2Rad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// CIEDE2000 implements the CIE DE2000 color difference with parametric
// weighting factors kL = kC = kH = 1.
func CIEDE2000(lab1, lab2 []float64) float64 {
	l1, a1, b1 := lab1[0], lab1[1], lab1[2]
	l2, a2, b2 := lab2[0], lab2[1], lab2[2]

	deg360InRad := deg2Rad(360.0)
	deg180InRad := deg2Rad(180.0)
	const pow25To7 = 6103515625.0 // 25^7

	c1 := math.Sqrt(a1*a1 + b1*b1)
	c2 := math.Sqrt(a2*a2 + b2*b2)
	barC := (c1 + c2) / 2.0
	g := 0.5 * (1 - math.Sqrt(math.Pow(barC, 7)/(math.Pow(barC, 7)+pow25To7)))
	a1Prime := (1.0 + g) * a1
	a2Prime := (1.0 + g) * a2
	cPrime1 := math.Sqrt(a1Prime*a1Prime + b1*b1)
	cPrime2 := math.Sqrt(a2Prime*a2Prime + b2*b2)

	var hPrime1 float64
	if b1 != 0 || a1Prime != 0 {
		hPrime1 = math.Atan2(b1, a1Prime)
		if hPrime1 < 0 {
			hPrime1 += deg360InRad
		}
	}
	var hPrime2 float64
	if b2 != 0 || a2Prime != 0 {
		hPrime2 = math.Atan2(b2, a2Prime)
		if hPrime2 < 0 {
			hPrime2 += deg360InRad
		}
	}

	deltaLPrime := l2 - l1
	deltaCPrime := cPrime2 - cPrime1
	var deltahPrime float64
	cPrimeProduct := cPrime1 * cPrime2
	if cPrimeProduct != 0 {
		deltahPrime = hPrime2 - hPrime1
		if deltahPrime < -deg180InRad {
			deltahPrime += deg360InRad
		} else if deltahPrime > deg180InRad {
			deltahPrime -= deg360InRad
		}
	}
	deltaHPrime := 2.0 * math.Sqrt(cPrimeProduct) * math.Sin(deltahPrime/2.0)

	barLPrime := (l1 + l2) / 2.0
	barCPrime := (cPrime1 + cPrime2) / 2.0
	var barhPrime float64
	hPrimeSum := hPrime1 + hPrime2
	if cPrimeProduct == 0 {
		barhPrime = hPrimeSum
	} else {
		if math.Abs(hPrime1-hPrime2) <= deg180InRad {
			barhPrime = hPrimeSum / 2.0
		} else if hPrimeSum < deg360InRad {
			barhPrime = (hPrimeSum + deg360InRad) / 2.0
		} else {
			barhPrime = (hPrimeSum - deg360InRad) / 2.0
		}
	}

	t := 1.0 - 0.17*math.Cos(barhPrime-deg2Rad(30.0)) +
		0.24*math.Cos(2.0*barhPrime) +
		0.32*math.Cos(3.0*barhPrime+deg2Rad(6.0)) -
		0.20*math.Cos(4.0*barhPrime-deg2Rad(63.0))
	deltaTheta := deg2Rad(30.0) * math.Exp(-math.Pow((barhPrime-deg2Rad(275.0))/deg2Rad(25.0), 2.0))
	rC := 2.0 * math.Sqrt(math.Pow(barCPrime, 7)/(math.Pow(barCPrime, 7)+pow25To7))
	sL := 1 + (0.015*math.Pow(barLPrime-50.0, 2.0))/math.Sqrt(20+math.Pow(barLPrime-50.0, 2.0))
	sC := 1 + 0.045*barCPrime
	sH := 1 + 0.015*barCPrime*t
	rT := -math.Sin(2.0*deltaTheta) * rC

	return math.Sqrt(
		math.Pow(deltaLPrime/sL, 2.0) +
			math.Pow(deltaCPrime/sC, 2.0) +
			math.Pow(deltaHPrime/sH, 2.0) +
			rT*(deltaCPrime/sC)*(deltaHPrime/sH))
}
