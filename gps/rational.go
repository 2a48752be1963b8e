package gps

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroDenominator is returned when a Rational with a denominator of zero is evaluated.
var ErrZeroDenominator = errors.New("Rational has a zero denominator")

// secondsDenominator is the denominator used when encoding the seconds component of a RationalTriple.
const secondsDenominator int64 = 1000000

// type Rational stores an exact numerator/denominator pair as found in EXIF RATIONAL tags.
type Rational struct {
	Numerator   int64 `json:"numerator"`
	Denominator int64 `json:"denominator"`
}

// Float returns the floating-point value of 'r'.
func (r Rational) Float() (float64, error) {

	if r.Denominator == 0 {
		return 0.0, ErrZeroDenominator
	}

	return float64(r.Numerator) / float64(r.Denominator), nil
}

// String returns 'r' formatted as "numerator/denominator".
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
}

// type RationalTriple stores the degrees, minutes and seconds of an angle.
type RationalTriple [3]Rational

// NewRationalTriple returns a RationalTriple for whole degrees and minutes and seconds expressed
// as 'seconds_num' / 'seconds_den'.
func NewRationalTriple(degrees int64, minutes int64, seconds_num int64, seconds_den int64) RationalTriple {

	return RationalTriple{
		Rational{degrees, 1},
		Rational{minutes, 1},
		Rational{seconds_num, seconds_den},
	}
}

// DecodeDegrees returns the decimal value of 't' computed as degrees + minutes/60 + seconds/3600.
func DecodeDegrees(t RationalTriple) (float64, error) {

	labels := [3]string{"degrees", "minutes", "seconds"}
	values := [3]float64{}

	for i, r := range t {

		v, err := r.Float()

		if err != nil {
			return 0.0, fmt.Errorf("Failed to derive %s from %s, %w", labels[i], r, err)
		}

		values[i] = v
	}

	return values[0] + (values[1] / 60.0) + (values[2] / 3600.0), nil
}

// EncodeDegrees returns a RationalTriple for the absolute value of 'v'. Seconds are stored with a
// denominator of one million which is enough for DecodeDegrees to recover 'v' to well within 1e-6.
func EncodeDegrees(v float64) RationalTriple {

	v = math.Abs(v)

	degrees := math.Floor(v)
	remainder := (v - degrees) * 60.0

	minutes := math.Floor(remainder)
	seconds := (remainder - minutes) * 60.0

	seconds_num := int64(math.Round(seconds * float64(secondsDenominator)))

	return NewRationalTriple(int64(degrees), int64(minutes), seconds_num, secondsDenominator)
}
