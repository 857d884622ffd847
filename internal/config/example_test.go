package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEvent_ExampleFile(t *testing.T) {
	e, err := LoadEvent("../../event.example.yaml")
	require.NoError(t, err)
	assert.Len(t, e.Tokens, 2)
	assert.True(t, e.HasArea("West Coast"))
	assert.False(t, e.HasArea("west coast"))
}
