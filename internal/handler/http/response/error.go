package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/validator"
)

// HandleError maps errors from the chat service to webhook responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		messages := make([]string, 0, len(validationErrs))
		for _, e := range validationErrs {
			messages = append(messages, e.Message)
		}
		BadRequest(w, strings.Join(messages, "; "))
		return
	}

	SystemError(w)
}
