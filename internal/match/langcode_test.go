package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplerCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"pt_BR", "pt"},
		{"pt-BR", "pt"},
		{"pt", ""},
		{"sr@latin", "sr"},
		{"ca_ES@valencia", "ca_ES"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, SimplerCode(tt.code))
		})
	}
}

func TestSimplerCodeChain(t *testing.T) {
	// Walking the chain always terminates
	code := "ca_ES@valencia"
	steps := 0
	for code != "" {
		code = SimplerCode(code)
		steps++
	}
	assert.Equal(t, 3, steps)
}
