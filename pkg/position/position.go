// Package position provides station positions in a terrestrial reference system (TRS)
// and the conversions to geodetic (LLH) and local topocentric (ENU) coordinates.
package position

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// Ellipsoid is a reference ellipsoid given by its semi-major axis and flattening.
type Ellipsoid struct {
	Name string
	A    float64 // semi-major axis in m
	F    float64 // flattening
}

// Common ellipsoids.
var (
	GRS80 = Ellipsoid{Name: "GRS80", A: 6378137.0, F: 1 / 298.257222101}
	WGS84 = Ellipsoid{Name: "WGS84", A: 6378137.0, F: 1 / 298.257223563}
)

// B returns the semi-minor axis.
func (ell Ellipsoid) B() float64 {
	return ell.A * (1 - ell.F)
}

// E2 returns the squared first eccentricity.
func (ell Ellipsoid) E2() float64 {
	return ell.F * (2 - ell.F)
}

// radius of curvature in the prime vertical
func (ell Ellipsoid) n(lat float64) float64 {
	sin := math.Sin(lat)
	return ell.A / math.Sqrt(1-ell.E2()*sin*sin)
}

// TRS is a cartesian position or vector in a terrestrial reference system, in m (or m/y for velocities).
type TRS struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LLH is a geodetic position. Latitude and longitude are in radians, the ellipsoidal height in m.
type LLH struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Height float64 `json:"height"`
}

// ENU is a local topocentric vector with east, north and up components in m.
type ENU struct {
	E float64 `json:"east"`
	N float64 `json:"north"`
	U float64 `json:"up"`
}

// LLHFromDegrees returns a geodetic position given in degrees.
func LLHFromDegrees(lat, lon, height float64) LLH {
	return LLH{Lat: lat * math.Pi / 180, Lon: lon * math.Pi / 180, Height: height}
}

// Degrees returns latitude and longitude in degrees.
func (p LLH) Degrees() (lat, lon float64) {
	return p.Lat * 180 / math.Pi, p.Lon * 180 / math.Pi
}

// Add returns p + q.
func (p TRS) Add(q TRS) TRS {
	return TRS{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p - q.
func (p TRS) Sub(q TRS) TRS {
	return TRS{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Scale returns p * f.
func (p TRS) Scale(f float64) TRS {
	return TRS{X: p.X * f, Y: p.Y * f, Z: p.Z * f}
}

// Norm returns the length of the vector.
func (p TRS) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// IsZero reports whether all components are zero.
func (p TRS) IsZero() bool {
	return p.X == 0 && p.Y == 0 && p.Z == 0
}

// LLH converts the cartesian position to geodetic coordinates on ell.
func (p TRS) LLH(ell Ellipsoid) LLH {
	e2 := ell.E2()
	lon := math.Atan2(p.Y, p.X)
	r := math.Hypot(p.X, p.Y)

	// on the rotation axis
	if r < 1e-9 {
		lat := math.Pi / 2
		if p.Z < 0 {
			lat = -lat
		}
		return LLH{Lat: lat, Lon: 0, Height: math.Abs(p.Z) - ell.B()}
	}

	lat := math.Atan2(p.Z, r*(1-e2))
	var h float64
	for i := 0; i < 20; i++ {
		n := ell.n(lat)
		h = r/math.Cos(lat) - n
		next := math.Atan2(p.Z, r*(1-e2*n/(n+h)))
		if math.Abs(next-lat) < 1e-14 {
			lat = next
			break
		}
		lat = next
	}
	h = r/math.Cos(lat) - ell.n(lat)
	return LLH{Lat: lat, Lon: lon, Height: h}
}

// TRS converts the geodetic position on ell to cartesian coordinates.
func (p LLH) TRS(ell Ellipsoid) TRS {
	n := ell.n(p.Lat)
	cosLat, sinLat := math.Cos(p.Lat), math.Sin(p.Lat)
	return TRS{
		X: (n + p.Height) * cosLat * math.Cos(p.Lon),
		Y: (n + p.Height) * cosLat * math.Sin(p.Lon),
		Z: (n*(1-ell.E2()) + p.Height) * sinLat,
	}
}

// ENU rotates the cartesian vector p into the local system at ref.
func (p TRS) ENU(ref LLH) ENU {
	sinLat, cosLat := math.Sin(ref.Lat), math.Cos(ref.Lat)
	sinLon, cosLon := math.Sin(ref.Lon), math.Cos(ref.Lon)
	return ENU{
		E: -sinLon*p.X + cosLon*p.Y,
		N: -sinLat*cosLon*p.X - sinLat*sinLon*p.Y + cosLat*p.Z,
		U: cosLat*cosLon*p.X + cosLat*sinLon*p.Y + sinLat*p.Z,
	}
}

// TRS rotates the local vector d at ref into the cartesian system.
func (d ENU) TRS(ref LLH) TRS {
	sinLat, cosLat := math.Sin(ref.Lat), math.Cos(ref.Lat)
	sinLon, cosLon := math.Sin(ref.Lon), math.Cos(ref.Lon)
	return TRS{
		X: -sinLon*d.E - sinLat*cosLon*d.N + cosLat*cosLon*d.U,
		Y: cosLon*d.E - sinLat*sinLon*d.N + cosLat*sinLon*d.U,
		Z: cosLat*d.N + sinLat*d.U,
	}
}

// julianYear is the length of a Julian year in days.
const julianYear = 365.25

// julianDate returns the Julian date of t including fractions of a second.
func julianDate(t time.Time) float64 {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	return jd + float64(t.Nanosecond())/1e9/86400
}

// YearsBetween returns the time from ref to t in Julian years.
func YearsBetween(ref, t time.Time) float64 {
	return (julianDate(t) - julianDate(ref)) / julianYear
}

// Propagate applies the linear velocity vel (m/y) to pos given at refEpoch and returns the
// position at date. A zero refEpoch or date returns pos unchanged.
func Propagate(pos, vel TRS, refEpoch, date time.Time) TRS {
	if refEpoch.IsZero() || date.IsZero() || vel.IsZero() {
		return pos
	}
	return pos.Add(vel.Scale(YearsBetween(refEpoch, date)))
}

// DecimalYearToTime converts a decimal year, e.g. 2010.0, to UTC time.
func DecimalYearToTime(y float64) time.Time {
	year := math.Floor(y)
	start := time.Date(int(year), 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	frac := y - year
	return start.Add(time.Duration(frac * float64(end.Sub(start)))).Round(time.Second)
}

// TimeToDecimalYear converts t to a decimal year.
func TimeToDecimalYear(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + float64(t.Sub(start))/float64(end.Sub(start))
}
