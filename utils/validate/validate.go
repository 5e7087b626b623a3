package validate

import (
	"errors"
	"fmt"
	"keyhub/internal/core"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/pkg/request"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 輸出格式化的 validator error（欄位 json 名/型別/規則列表）
func ValidationErrorResponse(obj interface{}, err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		var b strings.Builder
		b.WriteString("Validation error:\n")
		for _, fe := range errs {
			field := jsonFieldName(obj, fe.StructField())
			ftype := fieldType(obj, fe.StructField())
			format := getFieldFormat(obj, fe.StructField())
			b.WriteString(fmt.Sprintf(" - Field \"%s\" (type: %s) failed the '%s' validation (rules: %v)\n",
				field, ftype, fe.Tag(), format))
		}
		return b.String()
	}
	return fmt.Sprintf("Validation error: %s", err.Error())
}

func jsonFieldName(obj interface{}, structField string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("json")
		if tag != "" && tag != "-" {
			return strings.Split(tag, ",")[0]
		}
	}
	return structField
}

func fieldType(obj interface{}, structField string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		return f.Type.Name()
	}
	return ""
}

func getFieldFormat(obj interface{}, structField string) []string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("binding")
		if tag != "" {
			return strings.Split(tag, ",")
		}
	}
	return nil
}

// BindAndValidate 綁定 JSON body；DTO 實作 request.Validator 時回傳自訂訊息
func BindAndValidate(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBindJSON(req); err != nil {
		return err, bindError(req, err)
	}
	return nil, nil
}

// BindQuery 綁定 query string（GET /api/keys/validate 等）
func BindQuery(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBindQuery(req); err != nil {
		return err, bindError(req, err)
	}
	return nil, nil
}

func bindError(req any, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return cErr.BadRequestBody("malformed request body")
	}
	if _, ok := req.(request.Validator); ok {
		return request.GetError(req, err)
	}
	return cErr.ValidateErr(ValidationErrorResponse(req, err))
}

func GetInt64Query(c *gin.Context, key string, defaultVal int64) (int64, error) {
	if v := c.Query(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return n, nil
	}
	return defaultVal, nil
}

// PathParam 取出必填的 path 參數並去除空白
func PathParam(c *gin.Context, key string) (string, error) {
	v := strings.TrimSpace(c.Param(key))
	if v == "" {
		return "", cErr.ValidatePathParamsErr("missing " + key)
	}
	return v, nil
}

// ===== 自訂驗證規則 =====

// RegisterRules 掛上 paidplan / keytier / giveawaystatus 規則到 gin 的 validator
func RegisterRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return registerRules(v)
}

func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"paidplan": func(fl validator.FieldLevel) bool {
			return IsValidPaidPlan(fl.Field().String())
		},
		"keytier": func(fl validator.FieldLevel) bool {
			return IsValidKeyTier(fl.Field().String())
		},
		"giveawaystatus": func(fl validator.FieldLevel) bool {
			return IsValidGiveawayStatus(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// ===== PaidPlan =====
func IsValidPaidPlan(plan string) bool {
	_, ok := core.ParsePaidPlan(plan)
	return ok
}

// ===== KeyTier =====
var validTiers = []core.KeyTier{
	core.TierFree,
	core.TierPaid,
}

func IsValidKeyTier(tier string) bool {
	for _, v := range validTiers {
		if core.KeyTier(strings.ToLower(tier)) == v {
			return true
		}
	}
	return false
}

// ===== GiveawayStatus =====
var validGiveawayStatuses = []core.GiveawayStatus{
	core.GiveawayRunning,
	core.GiveawayEnded,
	core.GiveawayCancelled,
}

func IsValidGiveawayStatus(status string) bool {
	for _, v := range validGiveawayStatuses {
		if core.GiveawayStatus(status) == v {
			return true
		}
	}
	return false
}
