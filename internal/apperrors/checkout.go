package apperrors

import (
	"fmt"
	"net/http"
)

// CheckoutStage names the write that a failed checkout stopped at
type CheckoutStage string

const (
	StageAddress CheckoutStage = "address"
	StageOrder   CheckoutStage = "order"
	StageItems   CheckoutStage = "items"
)

var ErrCheckoutFailed = NewBaseError(
	http.StatusBadGateway,
	"CHECKOUT_FAILED",
	"Checkout failed",
	"",
)

// CheckoutError reports which stage of an order submission failed. Earlier
// stages may have left records behind unless checkout ran atomically.
type CheckoutError struct {
	Stage CheckoutStage
	Err   error
}

func NewCheckoutError(stage CheckoutStage, err error) *CheckoutError {
	return &CheckoutError{Stage: stage, Err: err}
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout failed at %s stage: %v", e.Stage, e.Err)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

func (e *CheckoutError) Is(target error) bool {
	return target == ErrCheckoutFailed
}

func (e *CheckoutError) HTTPCode() int {
	return ErrCheckoutFailed.HTTPCode()
}

func (e *CheckoutError) ErrorCode() string {
	return ErrCheckoutFailed.ErrorCode()
}

func (e *CheckoutError) Message() string {
	return fmt.Sprintf("%s at %s stage", ErrCheckoutFailed.Message(), e.Stage)
}

func (e *CheckoutError) Details() string {
	return string(e.Stage)
}
