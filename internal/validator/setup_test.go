package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_RegistersEnglish(t *testing.T) {
	v, trans, err := newValidator()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "en", trans.Locale())

	// init で同じ設定が使われている
	assert.NotNil(t, validate)
	assert.Equal(t, "en", translator.Locale())
}
