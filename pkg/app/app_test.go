package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/vmctrl/pkg/auth"
	"github.com/cuemby/vmctrl/pkg/config"
	"github.com/cuemby/vmctrl/pkg/hypervisor"
)

func TestNewBuildsAppFromCollaborators(t *testing.T) {
	cfg := &config.Config{}
	cluster := &hypervisor.Mock{}
	tokens := auth.NewTokenService("secret", 0)

	a := New(cfg, nil, cluster, tokens)

	assert.Same(t, cfg, a.Config)
	assert.Same(t, cluster, a.Cluster)
	assert.Same(t, tokens, a.Tokens)
	assert.Nil(t, a.Store)
}

func TestCloneIsIndependentValue(t *testing.T) {
	cluster := &hypervisor.Mock{}
	a := App{Cluster: cluster, Tokens: auth.NewTokenService("secret", 0)}

	clone := a.Clone()

	assert.Equal(t, a.Cluster, clone.Cluster)
	assert.Equal(t, a.Tokens, clone.Tokens)

	clone.Cluster = nil
	assert.NotNil(t, a.Cluster, "mutating the clone's field must not affect the original")
}
