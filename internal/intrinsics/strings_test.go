package intrinsics_test

import (
	"testing"

	"github.com/miniscript-lang/miniscript/internal/value"
	"github.com/stretchr/testify/assert"
)

func TestLowerUpper(t *testing.T) {
	assert.Equal(t, value.Str("hello"), callIntrinsic(t, "lower", value.Str("HeLLo")))
	assert.Equal(t, value.Str("HELLO"), callIntrinsic(t, "upper", value.Str("HeLLo")))
}

func TestValParsesNumericStrings(t *testing.T) {
	assert.Equal(t, value.Number(42), callIntrinsic(t, "val", value.Str(" 42 ")))
	assert.Equal(t, value.Number(0), callIntrinsic(t, "val", value.Str("not a number")))
	assert.Equal(t, value.Number(7), callIntrinsic(t, "val", value.Number(7)))
}

func TestStrFormatsNumbers(t *testing.T) {
	assert.Equal(t, value.Str("3.5"), callIntrinsic(t, "str", value.Number(3.5)))
	assert.Equal(t, value.Str("1"), callIntrinsic(t, "str", value.Number(1)))
}

func TestRefEqualsComparesIdentityNotValue(t *testing.T) {
	a := value.NewList([]value.Value{value.Number(1)})
	b := value.NewList([]value.Value{value.Number(1)})
	assert.Equal(t, value.Number(0), callIntrinsic(t, "refEquals", a, b))
	assert.Equal(t, value.Number(1), callIntrinsic(t, "refEquals", a, a))
}
