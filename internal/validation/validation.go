// Package validation builds the struct validator shared by the configuration
// loader and the HTTP API.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// KPITag is the struct tag that accepts only known sensor KPIs.
const KPITag = "kpi"

// New returns a validator with the custom tags registered. It panics if a
// registration fails, which only happens on a programming error.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation(KPITag, validKPI); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", KPITag, err))
	}
	return v
}

func validKPI(fl validator.FieldLevel) bool {
	return model.KPI(fl.Field().String()).Valid()
}
