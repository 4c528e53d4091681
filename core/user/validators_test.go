package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

func TestPasswordPolicy(t *testing.T) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	commonPasswords = []string{"tr0ub4dor&3"} // pre-sorted

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "aB1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "aB1! aB1!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "no special char", pwd: "Abcdef12", wantTag: pwdComplexityTag},
		{name: "no uppercase", pwd: "abcdef1!", wantTag: pwdComplexityTag},
		{name: "similar to email", pwd: "Jo.Doe@test.cd1!", wantTag: pwdAttrSimTag},
		{name: "common password", pwd: "Tr0ub4dor&3", wantTag: pwdNoCommonTag},
		{name: "ok", pwd: "G00d.Pa55word!"},
	}
	checkTag := func(t *testing.T, err error, wantTag string) {
		t.Helper()
		if wantTag == "" {
			if err != nil {
				t.Fatalf("validate.Struct() error = %v, want nil", err)
			}
			return
		}
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			t.Fatalf("validate.Struct() error = %v, want ValidationErrors", err)
		}
		for _, vErr := range vErrs {
			if vErr.Tag() == wantTag {
				return
			}
		}
		t.Errorf("validate.Struct() = %v, want tag %q", vErrs, wantTag)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := NewUser{Name: "Jo Doe", Email: "jo.doe@test.cd", Password: tt.pwd, Role: RoleStudent}
			checkTag(t, validate.Struct(nu), tt.wantTag)
		})

		// the same policy applies when confirming a password reset
		t.Run(tt.name+" on reset", func(t *testing.T) {
			rp := ResetUserPassword{UID: "uid", Token: "token", Password: tt.pwd, Name: "Jo Doe", Email: "jo.doe@test.cd"}
			checkTag(t, validate.Struct(rp), tt.wantTag)
		})
	}
}
