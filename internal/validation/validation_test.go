package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hastrava/internal/validation"
)

type kpiList struct {
	KPIs []string `validate:"omitempty,len=2,dive,kpi"`
}

func TestNew_KPITag(t *testing.T) {
	tests := []struct {
		name    string
		kpis    []string
		wantErr bool
	}{
		{name: "known kpis", kpis: []string{"distance", "pace"}},
		{name: "empty list", kpis: nil},
		{name: "unknown kpi", kpis: []string{"distance", "heart_rate"}, wantErr: true},
		{name: "empty kpi", kpis: []string{"distance", ""}, wantErr: true},
	}

	v := validation.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(kpiList{KPIs: tt.kpis})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNew_IndependentInstances(t *testing.T) {
	require.NotSame(t, validation.New(), validation.New())
}
