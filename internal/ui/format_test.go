package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.00", money(0))
	assert.Equal(t, "$1,234.50", money(1234.5))
	assert.Equal(t, "-$20.00", money(-20))
	assert.Equal(t, "+$5.10", signedMoney(5.1))
	assert.Equal(t, "-$5.10", signedMoney(-5.1))
}

func TestSignedPercent(t *testing.T) {
	assert.Equal(t, "+0.00%", signedPercent(0))
	assert.Equal(t, "-3.25%", signedPercent(-3.25))
}
