package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVector(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
		want string
	}{
		{name: "empty vector", vec: []float32{}, want: "[]"},
		{name: "single value", vec: []float32{1.5}, want: "[1.5]"},
		{name: "negative and positive", vec: []float32{-0.25, 0, 3}, want: "[-0.25,0,3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatVector(tt.vec))
		})
	}
}
