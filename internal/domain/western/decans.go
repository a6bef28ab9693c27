package western

import "math"

// Traditional domicile ruler of each sign, Aries through Pisces.
var signRulers = [12]string{
	"mars", "venus", "mercury", "moon", "sun", "mercury",
	"venus", "mars", "jupiter", "saturn", "saturn", "jupiter",
}

// Decan is a ten-degree subdivision of a sign. Rulers follow the triplicity
// scheme: decan one takes the sign's own ruler, decans two and three take the
// rulers of the next signs of the same element.
type Decan struct {
	Object string `json:"object"`
	Sign   string `json:"sign"`
	Number int    `json:"number"`
	Ruler  string `json:"ruler"`
}

// DecanOf locates a longitude's decan and its ruler.
func DecanOf(object string, lon float64) Decan {
	norm := math.Mod(lon, 360)
	if norm < 0 {
		norm += 360
	}
	sign := int(norm/30) % 12
	within := norm - float64(sign)*30
	number := int(within/10) + 1
	if number > 3 {
		number = 3
	}
	rulerSign := (sign + 4*(number-1)) % 12
	return Decan{
		Object: object,
		Sign:   SignName(sign),
		Number: number,
		Ruler:  signRulers[rulerSign],
	}
}
