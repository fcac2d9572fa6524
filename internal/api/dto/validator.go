package dto

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"canteen_order_v1/internal/model"
	"canteen_order_v1/pkg/utils"
)

var (
	hhmmPattern  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators 向 gin 的校验引擎注册自定义规则
//   - date: YYYY-MM-DD
//   - hhmm: HH:MM
//   - order_status: pending / approved / rejected
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		rules := map[string]validator.Func{
			"date":         validateDate,
			"hhmm":         validateHHMM,
			"order_status": validateOrderStatus,
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = err
				return
			}
		}
	})
	return registerErr
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := utils.ParseDate(fl.Field().String())
	return err == nil
}

func validateHHMM(fl validator.FieldLevel) bool {
	return hhmmPattern.MatchString(fl.Field().String())
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	return model.IsValidOrderStatus(fl.Field().String())
}
