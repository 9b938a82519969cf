package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// 翻訳が無いとメッセージが壊れるので起動時に止める
func init() {
	var err error
	validate, translator, err = newValidator()
	if err != nil {
		panic(fmt.Sprintf("validator setup: %v", err))
	}
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	v := validator.New()

	// メッセージにはjsonタグ名を使う
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	trans, found := ut.New(en.New(), en.New()).GetTranslator("en")
	if !found {
		return nil, nil, errors.New("en translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, nil, fmt.Errorf("register en translations: %w", err)
	}
	return v, trans, nil
}

// Check は構造体を検証し、違反をすべてメッセージで返す（違反なしなら nil）。
func Check(val any) []string {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}

	var verrors validator.ValidationErrors
	if !errors.As(err, &verrors) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrors))
	for _, fe := range verrors {
		out = append(out, fe.Translate(translator))
	}
	return out
}
