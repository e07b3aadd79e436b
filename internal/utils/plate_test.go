package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPlate(t *testing.T) {
	assert.True(t, ValidPlate("AB-123-CD"))
	assert.True(t, ValidPlate(" ab-123-cd "), "normalized before matching")

	assert.False(t, ValidPlate("AB123CD"))
	assert.False(t, ValidPlate("ABC-123-CD"))
	assert.False(t, ValidPlate("AB-12-CD"))
	assert.False(t, ValidPlate("AB-123-C"))
	assert.False(t, ValidPlate(""))
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "AB-123-CD", NormalizePlate("  ab-123-cd "))
}
