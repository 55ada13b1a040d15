package spatial

// WGS-84 to Texas North-Central (EPSG:2276) Lambert Conformal Conic, US-feet.
// Used when the boundary layer is published in state-plane coordinates and
// lane points have to be projected before the containment test.

import (
	"math"

	"bikeways/internal/types"
)

const (
	spFalseEasting  = 1968500.0
	spFalseNorthing = 6561666.666666666
	phi0Deg         = 31.66666666666667 // latitude of origin
	phi1Deg         = 32.13333333333333 // standard parallel 1
	phi2Deg         = 33.96666666666667 // standard parallel 2
	lon0Deg         = -98.5             // central meridian

	ftPerMeter = 3.2808333333333334 // US survey foot
	semiMajorM = 6378137.0          // NAD83 semi-major axis (metres)
	e2         = 0.00669438002290   // NAD83 eccentricity squared
)

var (
	lccN    float64
	lccF    float64
	lccRho0 float64
)

func init() {
	phi1 := phi1Deg * math.Pi / 180
	phi2 := phi2Deg * math.Pi / 180
	phi0 := phi0Deg * math.Pi / 180

	m1 := lccM(phi1)
	m2 := lccM(phi2)
	t1 := lccT(phi1)
	t2 := lccT(phi2)
	t0 := lccT(phi0)

	lccN = math.Log(m1/m2) / math.Log(t1/t2)

	aFt := semiMajorM * ftPerMeter
	lccF = aFt * m1 / (lccN * math.Pow(t1, lccN))
	lccRho0 = lccF * math.Pow(t0, lccN)
}

func lccM(phi float64) float64 {
	return math.Cos(phi) / math.Sqrt(1-e2*math.Sin(phi)*math.Sin(phi))
}

func lccT(phi float64) float64 {
	e := math.Sqrt(e2)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-e*math.Sin(phi))/(1+e*math.Sin(phi)), e/2)
}

// Projector maps a WGS-84 point into the boundary layer's coordinate system.
type Projector func(types.Point) types.Point

// Identity leaves points untouched (boundaries already in EPSG:4326).
func Identity(pt types.Point) types.Point { return pt }

// ToTexasNorthCentral converts a WGS-84 lon/lat point to State-Plane
// North-Central Texas feet. X is easting and Y is northing.
func ToTexasNorthCentral(pt types.Point) types.Point {
	phi := pt.Y * math.Pi / 180
	lambda := pt.X * math.Pi / 180
	lambda0 := lon0Deg * math.Pi / 180

	t := lccT(phi)
	rho := lccF * math.Pow(t, lccN)
	theta := lccN * (lambda - lambda0)

	return types.Point{
		X: rho*math.Sin(theta) + spFalseEasting,
		Y: lccRho0 - rho*math.Cos(theta) + spFalseNorthing,
	}
}

// ProjectorFor returns the projector for a boundary CRS code.
func ProjectorFor(crs string) (Projector, bool) {
	switch crs {
	case "", "EPSG:4326":
		return Identity, true
	case "EPSG:2276":
		return ToTexasNorthCentral, true
	}
	return nil, false
}
