package ephemeris

// Mean circular orbital elements at epoch J2000.0. Longitudes are mean
// ecliptic longitudes in degrees; rates are degrees per day. A circular
// coplanar model keeps planets within a few degrees of their true positions,
// which preserves sign, house and aspect structure.
type orbit struct {
	radiusAU   float64
	lonJ2000   float64
	ratePerDay float64
}

var heliocentric = map[string]orbit{
	"mercury": {radiusAU: 0.387098, lonJ2000: 252.25084, ratePerDay: 4.09233445},
	"venus":   {radiusAU: 0.723332, lonJ2000: 181.97973, ratePerDay: 1.60213034},
	"earth":   {radiusAU: 1.000000, lonJ2000: 100.46435, ratePerDay: 0.98560910},
	"mars":    {radiusAU: 1.523679, lonJ2000: 355.45332, ratePerDay: 0.52402068},
	"jupiter": {radiusAU: 5.202603, lonJ2000: 34.40438, ratePerDay: 0.08308529},
	"saturn":  {radiusAU: 9.554909, lonJ2000: 49.94432, ratePerDay: 0.03344414},
	"uranus":  {radiusAU: 19.218446, lonJ2000: 313.23218, ratePerDay: 0.01172834},
	"neptune": {radiusAU: 30.110387, lonJ2000: 304.88003, ratePerDay: 0.00598103},
	"pluto":   {radiusAU: 39.481687, lonJ2000: 238.92881, ratePerDay: 0.00396},
	"chiron":  {radiusAU: 13.708, lonJ2000: 50.0, ratePerDay: 0.01936},
}

// Lunar mean elements, Meeus-style truncated series.
const (
	moonLonJ2000    = 218.3164477
	moonLonRate     = 13.17639648
	moonAnomJ2000   = 134.9633964
	moonAnomRate    = 13.06499295
	moonEqCenterAmp = 6.289
	nodeLonJ2000    = 125.0445479
	nodeLonRate     = -0.05295376 // mean node regresses
)

// Ayanamsa offsets at J2000.0 in degrees, with a shared precession rate. The
// named variants differ only in their zero point.
const precessionPerYear = 50.28796 / 3600

var ayanamsaJ2000 = map[string]float64{
	"lahiri":             23.85236,
	"chitrapaksha":       23.85236,
	"fagan_bradley":      24.74204,
	"de_luce":            26.48522,
	"raman":              21.01444,
	"krishnamurti":       23.75012,
	"yukteshwar":         22.46387,
	"djwhal_khul":        27.37366,
	"true_citra":         23.85675,
	"true_revati":        19.99686,
	"aryabhata":          23.71311,
	"aryabhata_mean_sun": 23.71917,
}
