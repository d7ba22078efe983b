package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetReadableBy(t *testing.T) {
	private := &Asset{ID: "a1", Owner: "alice", IsPublic: false}
	public := &Asset{ID: "a2", Owner: "alice", IsPublic: true}

	tests := []struct {
		name      string
		asset     *Asset
		requester Requester
		want      bool
	}{
		{"owner reads own private asset", private, Requester{Identity: "alice"}, true},
		{"stranger denied on private asset", private, Requester{Identity: "bob"}, false},
		{"privileged requester reads anything", private, Requester{Identity: "root", Privileged: true}, true},
		{"stranger reads public asset", public, Requester{Identity: "bob"}, true},
		{"anonymous reads public asset", public, Requester{}, true},
		{"anonymous denied on private asset", private, Requester{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.asset.ReadableBy(tt.requester))
		})
	}
}

func TestNewAsset(t *testing.T) {
	asset := NewAsset("alice", "holiday", "/videos/raw.mp4", 1024, true)

	assert.NotEmpty(t, asset.ID)
	assert.Equal(t, "alice", asset.Owner)
	assert.Equal(t, int64(1024), asset.SizeBytes)
	assert.True(t, asset.IsPublic)
	assert.Zero(t, asset.DurationSecs, "duration is unknown until probed")
}
