package params

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/madara-alliance/madara-cli/internal/common"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	for tag, fn := range map[string]func(string) error{
		"endpoint":    common.ValidateURL,
		"optendpoint": common.ValidateOptionalURL,
		"blocktime":   common.ValidateBlockTime,
		"hostport":    common.ValidateHostPort,
		"path":        common.ValidatePath,
		"notblank":    common.ValidateNotEmpty,
	} {
		check := fn
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String()) == nil
		})
	}

	v.RegisterStructValidation(proverLevel, ProverParams{})

	return v
}

func proverLevel(sl validator.StructLevel) {
	p := sl.Current().Interface().(ProverParams)
	if Value(p.Type) == ProverAtlantic {
		if strings.TrimSpace(Value(p.APIKey)) == "" {
			sl.ReportError(p.APIKey, "api_key", "APIKey", "required_for_atlantic", "")
		}
		if p.ServiceURL == nil {
			sl.ReportError(p.ServiceURL, "service_url", "ServiceURL", "required_for_atlantic", "")
		}
	}
	if p.MinBlock != nil && p.MaxBlock != nil && *p.MaxBlock < *p.MinBlock {
		sl.ReportError(p.MaxBlock, "max_block", "MaxBlock", "gtefield", "min_block")
	}
}

// Check verifies that a resolved bundle is complete and valid. It reports the
// first offending field as a MissingRequiredField or ValidationError, and an
// unsupported prover as UnsupportedMode.
func Check(b Bundle) error {
	if b == nil || reflect.ValueOf(b).IsNil() {
		return common.MissingField("mode")
	}

	if ac, ok := b.(*AppChainParams); ok && Value(ac.Prover.Type) == ProverStwo {
		return common.Unsupported("prover stwo")
	}

	err := validate.Struct(b)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate %s bundle: %w", b.Mode(), err)
	}

	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required", "required_for_atlantic":
		return common.MissingField(field)
	default:
		// Values are left out: endpoints and keys may carry credentials.
		return common.ValidationError(field, fmt.Errorf("value fails %q check", fe.Tag()))
	}
}

// fieldPath strips the struct name: "AppChainParams.prover.api_key" -> "prover.api_key"
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
