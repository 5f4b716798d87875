package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	now := time.Date(2026, 3, 1, 12, 34, 56, 0, time.Local)
	formatted := formatTimePtr(&now)

	assert.Equal(t, now.UTC().Format(time.RFC3339), formatted)
}
