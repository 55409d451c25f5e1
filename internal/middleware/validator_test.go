package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampRows(t *testing.T) {
	assert.Equal(t, DefaultRows, ClampRows(0))
	assert.Equal(t, DefaultRows, ClampRows(-3))
	assert.Equal(t, MinRows, ClampRows(1))
	assert.Equal(t, 15, ClampRows(15))
	assert.Equal(t, MaxRowsCap, ClampRows(500))
	assert.Equal(t, MinRows, ClampRows(MinRows))
	assert.Equal(t, MaxRowsCap, ClampRows(MaxRowsCap))
}

func TestValidateColumnName(t *testing.T) {
	assert.NoError(t, ValidateColumnName("feedback_text"))
	assert.Error(t, ValidateColumnName(""))
	assert.Error(t, ValidateColumnName("   "))
	assert.Error(t, ValidateColumnName("bad\ncolumn"))
}

func TestValidateUploadType(t *testing.T) {
	assert.NoError(t, ValidateUploadType(""))
	assert.NoError(t, ValidateUploadType("text/csv"))
	assert.NoError(t, ValidateUploadType("text/csv; charset=utf-8"))
	assert.NoError(t, ValidateUploadType("application/vnd.ms-excel"))
	assert.Error(t, ValidateUploadType("image/png"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "text", SanitizeString("  text\x00  "))
	assert.Equal(t, "ab", SanitizeString("a\x01b"))
}
