package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPublisher(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"})
	assert.Equal(t, "localhost:9092", p.writer.Addr.String())
	assert.Empty(t, p.writer.Topic)
	assert.NoError(t, p.Close())
}
