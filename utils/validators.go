package utils

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var phone10Pattern = regexp.MustCompile(`^[0-9]{10}$`)

// RegisterCustomValidators installs the project's binding rules on v.
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("phone10", ValidatePhone10Rule)
}

// InitValidator registers custom rules on gin's binding engine.
func InitValidator() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return RegisterCustomValidators(v)
	}
	return nil
}

// ValidatePhone10Rule accepts exactly ten digits once common separators are removed.
func ValidatePhone10Rule(fl validator.FieldLevel) bool {
	return ValidatePhone10(fl.Field().String())
}

func ValidatePhone10(phone string) bool {
	return phone10Pattern.MatchString(stripPhoneSeparators(phone))
}

func stripPhoneSeparators(phone string) string {
	out := make([]rune, 0, len(phone))
	for _, r := range phone {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
