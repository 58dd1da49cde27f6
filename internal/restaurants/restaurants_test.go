package restaurants

import (
	"errors"
	"strings"
	"testing"

	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/stretchr/testify/assert"
)

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name  string
		in    Profile
		field string
	}{
		{name: "valid", in: Profile{Name: "Dapur Nusantara"}},
		{name: "blank", in: Profile{Name: "   "}, field: "name"},
		{name: "too long", in: Profile{Name: strings.Repeat("x", 121)}, field: "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve billing.ValidationError
			assert.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
