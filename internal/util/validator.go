package util

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var qrCodePattern = regexp.MustCompile(`^TRN-[A-Z0-9]{8}$`)

func IsTrainingQRCode(code string) bool {
	return qrCodePattern.MatchString(code)
}

// RegisterValidators 注册 gin 绑定使用的自定义校验规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("qrcode", func(fl validator.FieldLevel) bool {
		return IsTrainingQRCode(fl.Field().String())
	})
}
