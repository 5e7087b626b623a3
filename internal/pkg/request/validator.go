package request

import (
	"errors"
	cErr "keyhub/internal/pkg/error"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validator DTO 實作後可替驗證失敗提供自訂訊息，key 為 "Field.tag"
type Validator interface {
	GetMessages() ValidatorMessages
}

type ValidatorMessages map[string]string

// 陣列欄位 Items[3] 一律以 Items.* 查詢
var indexPattern = regexp.MustCompile(`\[\d+\]`)

func (messages ValidatorMessages) lookup(fe validator.FieldError) (string, bool) {
	field := indexPattern.ReplaceAllString(fe.Field(), ".*")
	msg, ok := messages[field+"."+fe.Tag()]
	return msg, ok
}

// GetError 只回報第一個欄位錯誤
func GetError(req any, err error) *cErr.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return cErr.ValidateErr("Parameter error")
	}
	first := verrs[0]
	if v, ok := req.(Validator); ok {
		if msg, found := v.GetMessages().lookup(first); found {
			return cErr.ValidateErr(msg)
		}
	}
	return cErr.ValidateErr(first.Error())
}
