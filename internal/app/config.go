package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string `validate:"required"` // graph file, or a directory holding exactly one

	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`

	// Output switches to data-flow mode: the named output ("node:pin") is
	// computed and printed instead of running a sequence pass.
	Output       string `validate:"omitempty,pin_ref"`
	IterationCap int    `validate:"gte=0"`
	SavePath     string `validate:"omitempty,graph_file"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("pin_ref", func(fl validator.FieldLevel) bool {
		_, _, err := ParseOutputTarget(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("graph_file", func(fl validator.FieldLevel) bool {
		s := strings.ToLower(fl.Field().String())
		return strings.HasSuffix(s, ".hcl") || strings.HasSuffix(s, ".json")
	})
	return v
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, formatValidationErrors(err)
	}
	return &cfg, nil
}

func formatValidationErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is a required configuration field and cannot be empty", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("invalid %s %q: must be one of %s", fe.Field(), fe.Value(), fe.Param()))
		case "pin_ref":
			msgs = append(msgs, fmt.Sprintf("invalid %s %q: want node:pin", fe.Field(), fe.Value()))
		case "graph_file":
			msgs = append(msgs, fmt.Sprintf("invalid %s %q: must end in .hcl or .json", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s: failed %q check", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ParseOutputTarget splits a "node:pin" reference into the node identifier
// and the output name.
func ParseOutputTarget(ref string) (int32, string, error) {
	idText, pin, ok := strings.Cut(ref, ":")
	if !ok || pin == "" {
		return 0, "", fmt.Errorf("output reference %q: want node:pin", ref)
	}
	id, err := strconv.ParseInt(idText, 10, 32)
	if err != nil || id < 0 {
		return 0, "", fmt.Errorf("output reference %q: invalid node identifier", ref)
	}
	return int32(id), pin, nil
}
