package utils

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"go.uber.org/zap"
)

// 全局验证器
var (
	validate *validator.Validate
	trans    ut.Translator
	initOnce sync.Once
)

// InitValidator 初始化验证器，可重复调用
func InitValidator() {
	initOnce.Do(func() {
		validate = validator.New()

		// 错误信息中使用 json / form 字段名
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})

		zhTrans := zh.New()
		uni := ut.New(zhTrans, zhTrans)
		trans, _ = uni.GetTranslator("zh")

		if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
			logger.Error("注册验证器翻译失败", zap.Error(err))
		}

		registerCustomValidators()
	})
}

// registerCustomValidators 注册自定义验证器
func registerCustomValidators() {
	_ = validate.RegisterValidation("activity_status", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == models.ActivityStatusSuccess || value == models.ActivityStatusWarning
	})
	_ = validate.RegisterTranslation("activity_status", trans,
		func(ut ut.Translator) error {
			return ut.Add("activity_status", "{0}必须是success或warning", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("activity_status", fe.Field())
			return t
		},
	)
}

// BindAndValidate 绑定并验证请求数据
func BindAndValidate(c *gin.Context, obj interface{}) error {
	InitValidator()

	var err error
	switch c.Request.Method {
	case http.MethodGet, http.MethodDelete:
		err = c.ShouldBindQuery(obj)
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if strings.Contains(c.GetHeader("Content-Type"), "application/json") {
			err = c.ShouldBindJSON(obj)
		} else {
			err = c.ShouldBindWith(obj, binding.Form)
		}
	default:
		err = c.ShouldBind(obj)
	}

	// 处理绑定错误
	if err != nil {
		logger.Warn("请求数据绑定失败",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		return err
	}

	return ValidateStruct(obj)
}

// ValidateStruct 校验结构体，错误信息翻译为中文
func ValidateStruct(obj interface{}) error {
	InitValidator()

	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errMsgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			errMsgs = append(errMsgs, e.Translate(trans))
		}
		return errors.New(strings.Join(errMsgs, "; "))
	}
	return err
}
