package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// envNames maps struct paths to the variables that set them, so validation
// errors name what the operator has to change.
var envNames = map[string]string{
	"Config.Environment":                   "ENVIRONMENT",
	"Config.LogLevel":                      "LOG_LEVEL",
	"Config.Server.Host":                   "HOST",
	"Config.Server.Port":                   "PORT",
	"Config.Server.MaxUploadSize":          "MAX_UPLOAD_SIZE",
	"Config.Auth.APIToken":                 "API_TOKEN",
	"Config.Engine.Backend":                "WHISPER_BACKEND",
	"Config.Engine.Model":                  "WHISPER_MODEL",
	"Config.Engine.Device":                 "WHISPER_DEVICE",
	"Config.Engine.ComputeType":            "WHISPER_COMPUTE_TYPE",
	"Config.Engine.Threads":                "WHISPER_THREADS",
	"Config.Transcription.DefaultLanguage": "DEFAULT_LANGUAGE",
	"Config.Transcription.Workers":         "TRANSCRIBE_WORKERS",
	"Config.Transcription.Timeout":         "TRANSCRIBE_TIMEOUT",
}

// Validate checks struct constraints and reports each failure by its
// environment variable name
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		name, ok := envNames[fe.Namespace()]
		if !ok {
			name = fe.Namespace()
		}
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", name))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s=%s (got %v)", name, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
