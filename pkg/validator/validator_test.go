package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name  string `validate:"required"`
	Extra string `validate:"max=5"`
	Count int    `validate:"gte=0"`
}

func TestValidate_Success(t *testing.T) {
	s := testStruct{Name: "widget", Extra: "ok", Count: 3}
	err := Validate(s)
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	s := testStruct{Extra: "ok"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Equal(t, "is required", fields["Name"])
}

func TestValidate_MaxLength(t *testing.T) {
	s := testStruct{Name: "widget", Extra: "toolongstring"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["Extra"], "at most 5")
}

func TestValidate_MultipleErrors(t *testing.T) {
	s := testStruct{Extra: "toolongstring", Count: -1}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Extra")
	assert.Contains(t, fields, "Count")
}

func TestValidationError_ErrorString(t *testing.T) {
	s := testStruct{}
	err := Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Name'")
	assert.Contains(t, err.Error(), "is required")
}

type productIDStruct struct {
	ProductID string `validate:"required,max=64,printascii,excludesall= "`
}

func TestValidate_ProductIDTags(t *testing.T) {
	assert.NoError(t, Validate(productIDStruct{ProductID: "prod-a_42"}))

	err := Validate(productIDStruct{ProductID: "has space"})
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "contains forbidden characters", valErr.Fields()["ProductID"])

	err = Validate(productIDStruct{ProductID: "café"})
	require.Error(t, err)
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must contain only printable ASCII characters", valErr.Fields()["ProductID"])
}
