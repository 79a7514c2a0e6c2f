// Package discoveryengine adapts the Vertex AI Search (Discovery Engine) SDK
// to the search and import gateways.
package discoveryengine

import (
	"fmt"

	"google.golang.org/api/option"
)

// GlobalLocation uses the default service endpoint.
const GlobalLocation = "global"

// Config identifies the Discovery Engine deployment.
type Config struct {
	ProjectID   string
	Location    string
	DataStoreID string
	AppID       string
}

// Validate checks that every identifier needed by the resource paths is present.
func (c Config) Validate() error {
	switch {
	case c.ProjectID == "":
		return fmt.Errorf("project id is required")
	case c.Location == "":
		return fmt.Errorf("location is required")
	case c.DataStoreID == "":
		return fmt.Errorf("datastore id is required")
	case c.AppID == "":
		return fmt.Errorf("app id is required")
	}
	return nil
}

// Endpoint returns the regional API endpoint, or "" for the global location.
func Endpoint(location string) string {
	if location == "" || location == GlobalLocation {
		return ""
	}
	return location + "-discoveryengine.googleapis.com:443"
}

// clientOptions prepends the regional endpoint to caller options.
func clientOptions(location string, opts []option.ClientOption) []option.ClientOption {
	ep := Endpoint(location)
	if ep == "" {
		return opts
	}
	return append([]option.ClientOption{option.WithEndpoint(ep)}, opts...)
}

// ServingConfig is the default serving config of the search app.
func (c Config) ServingConfig() string {
	return fmt.Sprintf(
		"projects/%s/locations/%s/collections/default_collection/engines/%s/servingConfigs/default_config",
		c.ProjectID, c.Location, c.AppID,
	)
}

// Branch is the default branch of the data store.
func (c Config) Branch() string {
	return fmt.Sprintf(
		"projects/%s/locations/%s/dataStores/%s/branches/default_branch",
		c.ProjectID, c.Location, c.DataStoreID,
	)
}
