package web

import (
	"errors"
	"fmt"
	"stagesite/platform"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by the forms
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("videoplatform", func(fl validator.FieldLevel) bool {
			_, err := platform.Parse(fl.Field().String())
			return err == nil
		})
	})
}

var fieldLabels = map[string]string{
	"Title":    "제목",
	"Content":  "내용",
	"Author":   "작성자",
	"Name":     "이름",
	"Email":    "이메일",
	"Message":  "메시지",
	"Password": "비밀번호",
	"Platform": "플랫폼",
	"VideoURL": "영상 URL",
	"Tags":     "태그",
	"Duration": "재생 시간",
}

// validationMessage turns a binding error into a message for the user
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "입력값을 확인해주세요."
	}
	fe := errs[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s 항목을 입력해주세요.", label)
	case "email":
		return "올바른 이메일 주소를 입력해주세요."
	case "max":
		return fmt.Sprintf("%s 항목이 너무 깁니다.", label)
	case "videoplatform":
		return "지원하지 않는 플랫폼입니다."
	default:
		return fmt.Sprintf("%s 항목이 올바르지 않습니다.", label)
	}
}

func checked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}
