package handler

import (
	"github.com/fyerfyer/question-bank/internal/extractor"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 向gin的校验器注册自定义规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("question_type", validateQuestionType)
}

// validateQuestionType 校验题型名称
func validateQuestionType(fl validator.FieldLevel) bool {
	return extractor.QuestionType(fl.Field().String()).IsValid()
}
