package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingNotice(t *testing.T) {
	tests := []struct {
		name     string
		previous int
		current  int
		post     bool
	}{
		{"first rows", 0, 2, true},
		{"more rows", 2, 3, true},
		{"fewer rows", 3, 1, true},
		{"unchanged", 2, 2, false},
		{"all keyed", 2, 0, false},
		{"still empty", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed, post := pendingNotice(tt.previous, tt.current, "!")
			assert.Equal(t, tt.post, post)
			if !tt.post {
				assert.Nil(t, embed)
			}
		})
	}
}

func TestPendingNoticeText(t *testing.T) {
	embed, post := pendingNotice(0, 1, "?")
	require.True(t, post)
	assert.Equal(t, "1 row is waiting for an ID. Run `?convert` to generate the file.", embed.Description)

	embed, post = pendingNotice(1, 4, "!")
	require.True(t, post)
	assert.Contains(t, embed.Description, "4 rows are waiting")
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "1", embed.Fields[0].Value)
	assert.Equal(t, "4", embed.Fields[1].Value)
}
