// Package validation validates loaded configuration with struct tags.
//
//	type Entry struct {
//	    BaseURL string `mapstructure:"base_url" validate:"omitempty,http_url"`
//	}
//	err := validation.Validate(entry)
//
// Field names in messages are the mapstructure keys used in config files.
package validation
