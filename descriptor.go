package cmdcore

import "github.com/go-playground/validator/v10"

// descriptorValidate is shared across every ComponentDescriptor/FlagDescriptor
// validation call; github.com/go-playground/validator/v10's own docs
// recommend a single cached *Validate per process rather than one per call.
var descriptorValidate = newDescriptorValidator()

func newDescriptorValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cmdname", func(fl validator.FieldLevel) bool {
		return ValidComponentName(fl.Field().String())
	})
	return v
}

// ComponentDescriptor is the struct-tag-driven declaration a front-end's
// declarative command-discovery layer assembles (from struct fields,
// annotations, a config file, whatever it likes) before handing it to
// ValidateComponentDescriptor. cmdcore itself never reflects over a caller's
// command types (§1, §9's non-goal) — this is the one seam where struct-tag
// validation legitimately belongs: validating the descriptor a front-end
// already decided to build, not discovering it by reflection.
type ComponentDescriptor struct {
	Name        string   `validate:"required,cmdname"`
	Aliases     []string `validate:"dive,cmdname"`
	Description string   `validate:"max=200"`
}

// ValidateComponentDescriptor runs d's struct-tag validation (name charset,
// alias charset, description length) and reports the first failure, if any,
// wrapped as an Internal *CommandError — an authoring-time mistake, not a
// runtime parse condition.
func ValidateComponentDescriptor(d ComponentDescriptor) error {
	if err := descriptorValidate.Struct(d); err != nil {
		return Internal(err)
	}
	return nil
}

// FlagDescriptor mirrors ComponentDescriptor for CommandFlag registration
// (§4.7): a flag's name is held to the same charset rule as a positional
// component's, and each alias must be exactly one character long.
type FlagDescriptor struct {
	Name        string   `validate:"required,cmdname"`
	Aliases     []string `validate:"dive,len=1"`
	Description string   `validate:"max=200"`
}

// ValidateFlagDescriptor runs d's struct-tag validation.
func ValidateFlagDescriptor(d FlagDescriptor) error {
	if err := descriptorValidate.Struct(d); err != nil {
		return Internal(err)
	}
	return nil
}
