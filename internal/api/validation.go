package api

import (
	"errors"
	"fitcoach/admin/internal/service"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the calendar_date (YYYY-MM-DD) and clock (HH:MM) tags
// to gin's validator. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected binding validator engine")
			return
		}
		if err = v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
			return
		}
		err = v.RegisterValidation("clock", validateClock)
	})
	return err
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(service.DateLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	for _, layout := range []string{service.ClockLayout, service.ClockLayoutSeconds} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// bindingErrorDetails renders validator failures as "field: rule" pairs.
func bindingErrorDetails(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
