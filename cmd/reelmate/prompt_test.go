package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsolePrompter(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
		{"y", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := &consolePrompter{in: bufio.NewReader(strings.NewReader(tt.input)), out: &out}

		got, err := p.Confirm(context.Background(), "Continue?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Continue? [y/N]: ", out.String())
	}
}

func TestConsolePrompter_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &consolePrompter{in: bufio.NewReader(strings.NewReader("y\n")), out: &bytes.Buffer{}}
	_, err := p.Confirm(ctx, "Continue?")
	assert.ErrorIs(t, err, context.Canceled)
}
