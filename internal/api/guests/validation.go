package guests

import (
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	guestsService "github.com/anandwan/awaas-backend/internal/service/guests"
)

var registerOnce sync.Once

// registerValidators adds the custom binding tags used by guest requests to
// gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("grouptype", func(fl validator.FieldLevel) bool {
			return guestsService.ValidGroupType(fl.Field().String())
		})
		_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
			return singleLine(fl.Field().String())
		})
	})
}

// singleLine reports whether s has no control characters.
func singleLine(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) < 0
}
