package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/transtab/internal/failure"
	"github.com/vk/transtab/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	phoneNoise = strings.NewReplacer("(", "", ")", "", "/", "", " ", "", "-", "")
	tenDigits  = regexp.MustCompile(`^[0-9]{10}$`)
	nineDigits = regexp.MustCompile(`^[0-9]{9}$`)
	nonDigits  = regexp.MustCompile(`\D+`)
)

// text renders a hook value the way it was typed in the sheet. Integral
// floats lose their fractional part so 5551234567.0 reads as digits.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// ValidatePhoneNumber formats ten digit phone numbers as ddd-ddd-dddd.
// Anything else becomes empty, or fails when quitOnError is set.
func ValidatePhoneNumber(value any, _ map[string]any, _ int, column string, quitOnError bool) (any, error) {
	s := text(value)
	if s == "" {
		return "", nil
	}
	digits := phoneNoise.Replace(s)
	if !tenDigits.MatchString(digits) {
		return reject(column, s, "not a ten digit phone number", quitOnError)
	}
	return digits[:3] + "-" + digits[3:6] + "-" + digits[6:], nil
}

// ValidateSSN keeps the digits of a social security number and formats
// nine of them as ddd-dd-dddd.
func ValidateSSN(value any, _ map[string]any, _ int, column string, quitOnError bool) (any, error) {
	s := text(value)
	if s == "" {
		return "", nil
	}
	digits := nonDigits.ReplaceAllString(s, "")
	if !nineDigits.MatchString(digits) {
		return reject(column, s, "not a nine digit social security number", quitOnError)
	}
	return digits[:3] + "-" + digits[3:5] + "-" + digits[5:], nil
}

// ValidateNumber keeps numbers and converts numeric text. Any other value
// is an error regardless of quitOnError.
func ValidateNumber(value any, _ map[string]any, _ int, column string, _ bool) (any, error) {
	switch x := value.(type) {
	case nil:
		return "", nil
	case int64, float64:
		return x, nil
	case string:
		if x == "" {
			return "", nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, nil
		}
	}
	return nil, &failure.TypeError{Column: column, Value: text(value), Msg: "did not contain a numerical value"}
}

func reject(column, value, msg string, quitOnError bool) (any, error) {
	if quitOnError {
		return nil, &failure.TypeError{Column: column, Value: value, Msg: msg}
	}
	return "", nil
}

// Register registers the validation operations.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCellHook("validate_phone_number", ValidatePhoneNumber)
	r.RegisterCellHook("validate_ssn", ValidateSSN)
	r.RegisterCellHook("validate_number", ValidateNumber)
}
