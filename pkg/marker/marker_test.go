package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		wantFound       bool
		wantInstruction string
	}{
		{
			name:            "token with instruction",
			content:         "some notes\nclaude! summarize this\nmore text",
			wantFound:       true,
			wantInstruction: "summarize this",
		},
		{
			name:            "token alone on line",
			content:         "intro\nclaude!\noutro",
			wantFound:       true,
			wantInstruction: "",
		},
		{
			name:            "token with trailing whitespace only",
			content:         "claude!   \t  \n",
			wantFound:       true,
			wantInstruction: "",
		},
		{
			name:            "token mid line",
			content:         "please update this claude! rewrite the intro",
			wantFound:       true,
			wantInstruction: "rewrite the intro",
		},
		{
			name:            "token at end of file without newline",
			content:         "text\nclaude! do X",
			wantFound:       true,
			wantInstruction: "do X",
		},
		{
			name:            "first occurrence wins",
			content:         "claude! first\nclaude! second",
			wantFound:       true,
			wantInstruction: "first",
		},
		{
			name:      "no token",
			content:   "ordinary markdown\nwith several lines\n",
			wantFound: false,
		},
		{
			name:      "empty content",
			content:   "",
			wantFound: false,
		},
		{
			name:      "partial token",
			content:   "claude without bang\nclaud! typo",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Scan(tt.content)
			assert.Equal(t, tt.wantFound, m.Found)
			assert.Equal(t, tt.wantInstruction, m.Instruction)
		})
	}
}

func TestScanIdempotent(t *testing.T) {
	content := "header\nclaude!  review and extend  \nfooter"

	first := Scan(content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Scan(content))
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("line with claude! token"))
	assert.False(t, Contains("nothing to see"))
}
