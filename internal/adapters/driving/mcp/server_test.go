package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil engine returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingEngine)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Engine: &mockEngine{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil engine returns error", func(t *testing.T) {
		ports := &Ports{}
		assert.ErrorIs(t, ports.Validate(), ErrMissingEngine)
	})

	t.Run("engine alone is sufficient", func(t *testing.T) {
		ports := &Ports{Engine: &mockEngine{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("optional ports may be nil", func(t *testing.T) {
		ports := &Ports{
			Engine:      &mockEngine{},
			Schemas:     nil,
			Transcripts: nil,
		}
		assert.NoError(t, ports.Validate())
	})
}
