package weather

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// areaLocation matches IANA zone names such as America/New_York or
// America/Argentina/Buenos_Aires.
var areaLocation = regexp.MustCompile(`^[A-Za-z_]+/[A-Za-z0-9_+\-]+(/[A-Za-z0-9_+\-]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("area_location", func(fl validator.FieldLevel) bool {
		return areaLocation.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

type zipInput struct {
	Zip string `validate:"required,len=5,number"`
}

// ParseZip accepts exactly five ASCII digits.
func ParseZip(s string) (ZipCode, error) {
	if err := validate.Struct(zipInput{Zip: s}); err != nil {
		return "", fmt.Errorf("%w: zip %q", ErrValidation, s)
	}
	return ZipCode(s), nil
}

// Validate checks coordinate ranges and the Area/Location timezone shape.
func (p GeoPoint) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
