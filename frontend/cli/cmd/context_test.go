package cmd

import (
	"testing"

	api "github.com/furisto/taskview/api/go/client"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

func setupContextFile(t *testing.T, fs *afero.Afero, contexts *api.EndpointContexts) {
	t.Helper()

	content, err := yaml.Marshal(contexts)
	if err != nil {
		t.Fatalf("failed to marshal contexts: %v", err)
	}

	fs.MkdirAll(testConfigDir, 0700)
	err = fs.WriteFile(testConfigDir+"/context.yaml", content, 0600)
	if err != nil {
		t.Fatalf("failed to write context file: %v", err)
	}
}

func readContextFile(t *testing.T, fs *afero.Afero) *api.EndpointContexts {
	t.Helper()

	content, err := fs.ReadFile(testConfigDir + "/context.yaml")
	if err != nil {
		t.Fatalf("failed to read context file: %v", err)
	}

	var contexts api.EndpointContexts
	if err := yaml.Unmarshal(content, &contexts); err != nil {
		t.Fatalf("failed to parse context file: %v", err)
	}
	return &contexts
}

func testContexts() *api.EndpointContexts {
	return &api.EndpointContexts{
		CurrentContext: "local",
		Contexts: map[string]api.EndpointContext{
			"local": {
				Address: "http://localhost:3000",
			},
			"staging": {
				Address: "https://tasks.staging.example.com:8443",
			},
		},
	}
}
