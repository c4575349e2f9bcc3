package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Article string  `validate:"article"`
	Name    string  `validate:"required,notblank"`
	Note    *string `validate:"omitnil,notblank"`
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(&sample{Article: "A112T4", Name: "Shoe"}))

	err := Check(&sample{Article: "A 1", Name: "Shoe"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Article")

	assert.ErrorIs(t, Check(&sample{Article: strings.Repeat("Ж", 21), Name: "Shoe"}), ErrValidation)
	assert.NoError(t, Check(&sample{Article: strings.Repeat("Ж", 20), Name: "Shoe"}))
	assert.ErrorIs(t, Check(&sample{Article: "A1", Name: " \t"}), ErrValidation)

	for _, bad := range []string{"X/B", `X\B`, "..", "A?1", "A%2F", "A#1", "A.B"} {
		assert.ErrorIs(t, Check(&sample{Article: bad, Name: "Shoe"}), ErrValidation, "article %q", bad)
	}
	assert.NoError(t, Check(&sample{Article: "А112Т4", Name: "Shoe"}))
	assert.NoError(t, Check(&sample{Article: "F-635_R4", Name: "Shoe"}))

	blank := "  "
	assert.ErrorIs(t, Check(&sample{Article: "A1", Name: "x", Note: &blank}), ErrValidation)
}

func TestValidateStructListsEveryField(t *testing.T) {
	errs := ValidateStruct(&sample{})
	assert.Len(t, errs, 2)
}
