package service

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	"daily-close/internal/errvalues"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateTask maps validator failures onto the task error values.
func validateTask(input *TaskInput) error {
	err := getValidator().Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return errvalues.ErrEmptyTitle
		case "max":
			return errvalues.ErrTitleTooLong
		}
	}
	return verrs
}
