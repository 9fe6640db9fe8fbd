package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessLevel_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, AccessPublic.IsValid())
	assert.True(t, AccessAdminOnly.IsValid())
	assert.True(t, AccessRestricted.IsValid())
	assert.False(t, AccessLevel("moderator").IsValid())
	assert.False(t, AccessLevel("").IsValid())
}

func TestStaticDefaultAccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command string
		want    AccessLevel
	}{
		{name: "public command", command: "ping", want: AccessPublic},
		{name: "admin command", command: "nuke", want: AccessAdminOnly},
		{name: "feed admin command", command: "rss-channel", want: AccessAdminOnly},
		{name: "unknown command defaults to public", command: "does-not-exist", want: AccessPublic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StaticDefaultAccess(tt.command))
		})
	}
}
