// Package validation checks railskit configuration values.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as
// an *errors.AppError with code INVALID_CONFIG and a "fields" detail.
//
// # Struct Tag Validation
//
//	type Definition struct {
//	    Name string `mapstructure:"name" validate:"required"`
//	}
//	err := validation.Struct(def)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Custom(cfg.URL != "" || cfg.URLFunc != nil, "url", "is required")
//	err := v.Validate()
package validation
