package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"acp-checkout-gateway/pkg/apperror"
)

var engine = validator.New(validator.WithRequiredStructEnabled())

// ValidateCreate decodes and validates a CreateRequest.
func ValidateCreate(body []byte) (CreateRequest, *apperror.AppError) {
	var req CreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, apperror.ErrInvalidJSON()
	}
	if err := engine.Struct(req); err != nil {
		return req, firstFieldError(err)
	}
	return req, nil
}

// ValidateUpdate additionally enforces the "at least one field" rule that
// struct tags alone cannot express.
func ValidateUpdate(body []byte) (UpdateRequest, *apperror.AppError) {
	var req UpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, apperror.ErrInvalidJSON()
	}
	if req.IsEmpty() {
		return req, apperror.ErrValidation("", "update request must set at least one of items, customer, fulfillment")
	}
	if err := engine.Struct(req); err != nil {
		return req, firstFieldError(err)
	}
	return req, nil
}

// ValidateComplete additionally enforces that payment carries a credential.
func ValidateComplete(body []byte) (CompleteRequest, *apperror.AppError) {
	var req CompleteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, apperror.ErrInvalidJSON()
	}
	if err := engine.Struct(req); err != nil {
		return req, firstFieldError(err)
	}
	if !req.Payment.HasCredential() {
		return req, apperror.ErrValidation("payment", "payment must set delegated_token or method")
	}
	return req, nil
}

func firstFieldError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		param := fieldPath(fe.Namespace())
		return apperror.ErrValidation(param, fmt.Sprintf("%s failed validation: %s", param, fe.Tag()))
	}
	return apperror.ErrValidation("", "request body failed validation")
}

// fieldPath strips the leading "Struct." namespace segment validator.v10
// prefixes every field with and lowercases the rest into a dotted path.
func fieldPath(namespace string) string {
	parts := strings.SplitN(namespace, ".", 2)
	if len(parts) < 2 {
		return strings.ToLower(namespace)
	}
	return strings.ToLower(parts[1])
}
