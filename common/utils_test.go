package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "title", Coalesce("", "title", "other"))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp[float32](0.5, 1, 2))
	assert.Equal(t, float32(2), Clamp[float32](3, 1, 2))
	assert.Equal(t, 5, Clamp(5, 0, 10))
}
