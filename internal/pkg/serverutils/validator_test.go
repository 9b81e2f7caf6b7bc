package serverutils

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type sampleRequest struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required,min=3"`
}

func TestValidateRequestPasses(t *testing.T) {
	req := sampleRequest{Email: "dev@example.com", Name: "Dev"}
	if err := ValidateRequest(req); err != nil {
		t.Errorf("ValidateRequest() = %v, want nil", err)
	}
}

func TestValidateRequestReportsAllViolations(t *testing.T) {
	req := sampleRequest{Email: "not-an-email", Name: "x"}

	err := ValidateRequest(req)
	if err == nil {
		t.Fatal("ValidateRequest() = nil, want error")
	}

	var fiberErr *fiber.Error
	if !errors.As(err, &fiberErr) {
		t.Fatalf("ValidateRequest() error type = %T, want *fiber.Error", err)
	}
	if fiberErr.Code != fiber.StatusBadRequest {
		t.Errorf("code = %d, want %d", fiberErr.Code, fiber.StatusBadRequest)
	}
}
