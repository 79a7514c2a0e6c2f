package discoveryengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "", Endpoint("global"))
	assert.Equal(t, "", Endpoint(""))
	assert.Equal(t, "eu-discoveryengine.googleapis.com:443", Endpoint("eu"))
	assert.Equal(t, "us-discoveryengine.googleapis.com:443", Endpoint("us"))
}

func TestClientOptions(t *testing.T) {
	assert.Empty(t, clientOptions("global", nil))
	assert.Len(t, clientOptions("eu", nil), 1)
}

func TestResourcePaths(t *testing.T) {
	cfg := Config{ProjectID: "proj", Location: "eu", DataStoreID: "ds-1", AppID: "app-1"}

	assert.Equal(t,
		"projects/proj/locations/eu/collections/default_collection/engines/app-1/servingConfigs/default_config",
		cfg.ServingConfig())
	assert.Equal(t,
		"projects/proj/locations/eu/dataStores/ds-1/branches/default_branch",
		cfg.Branch())
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{ProjectID: "p", Location: "global", DataStoreID: "d", AppID: "a"}
	assert.NoError(t, cfg.Validate())

	for _, mutate := range []func(*Config){
		func(c *Config) { c.ProjectID = "" },
		func(c *Config) { c.Location = "" },
		func(c *Config) { c.DataStoreID = "" },
		func(c *Config) { c.AppID = "" },
	} {
		c := cfg
		mutate(&c)
		assert.Error(t, c.Validate())
	}
}
