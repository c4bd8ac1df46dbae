package redisdrafts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_nilClient(t *testing.T) {
	_, err := New(Config{})
	assert.Equal(t, ErrNilClient, err)
}

func TestDial_unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// nothing listens on port 1
	_, err := Dial(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
