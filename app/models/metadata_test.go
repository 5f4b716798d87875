package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataMerge(t *testing.T) {
	base := Metadata{"orderId": "o_1", "source": "web"}
	merged := base.Merge(Metadata{"source": "api", "userId": "7"})

	assert.Equal(t, Metadata{"orderId": "o_1", "source": "api", "userId": "7"}, merged)
	assert.Equal(t, "web", base["source"])

	assert.Nil(t, Metadata(nil).Merge(nil))
}
