package controllers

import (
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Indian mobile, driving licence and registration plate formats.
var (
	phonePattern         = regexp.MustCompile(`^[6-9]\d{9}$`)
	dlPattern            = regexp.MustCompile(`^[A-Z]{2}\d{2}\s?\d{4}\s?\d{7}$`)
	vehicleNumberPattern = regexp.MustCompile(`^(?:[A-Z]{2}\d{2}[A-Z]{1,2}\d{4}|\d{2}BH\d{4}[A-Z]{2})$`)
	whitespace           = regexp.MustCompile(`\s+`)
)

var registerOnce sync.Once

// RegisterValidators adds the in_phone, in_dl and in_vehicle binding tags.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("in_phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("in_dl", func(fl validator.FieldLevel) bool {
			return dlPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("in_vehicle", func(fl validator.FieldLevel) bool {
			return vehicleNumberPattern.MatchString(whitespace.ReplaceAllString(fl.Field().String(), ""))
		})
	})
}

// validationMessage turns binding errors into the messages the desk staff see.
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "in_phone":
			msgs = append(msgs, "Invalid phone number. Please enter a valid 10-digit Indian mobile number.")
		case "in_dl":
			msgs = append(msgs, "Invalid driving license number. The correct format is SS RR YYYY NNNNNNN (e.g., MH12 2001 1234567).")
		case "in_vehicle":
			msgs = append(msgs, "Invalid vehicle number. Please ensure it matches the correct format (e.g., MH XX AB 1234 or 23BH2222XX).")
		case "required":
			msgs = append(msgs, fe.Field()+" is required.")
		default:
			msgs = append(msgs, fe.Error())
		}
	}
	return strings.Join(msgs, " ")
}
