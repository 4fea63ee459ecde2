package client

import (
	"fmt"
	"net/url"
	"strings"
)

type EndpointContexts struct {
	Contexts        map[string]EndpointContext `yaml:"contexts"`
	CurrentContext  string                     `yaml:"current-context,omitempty"`
	PreviousContext string                     `yaml:"previous-context,omitempty"`
}

func (c *EndpointContexts) Validate() error {
	for name, endpoint := range c.Contexts {
		if err := endpoint.Validate(); err != nil {
			return fmt.Errorf("context %q: %w", name, err)
		}
	}

	if c.CurrentContext != "" {
		if _, ok := c.Contexts[c.CurrentContext]; !ok {
			return fmt.Errorf("current context %q not found", c.CurrentContext)
		}
	}

	return nil
}

func (c *EndpointContexts) SetCurrent(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return nil
}

func (c *EndpointContexts) SetPrevious(name string) {
	if name == c.CurrentContext {
		return
	}
	c.PreviousContext = name
}

type EndpointContext struct {
	Address string      `yaml:"address"`
	Auth    *AuthConfig `yaml:"auth,omitempty"`
}

func (e EndpointContext) Validate() error {
	if e.Address == "" {
		return fmt.Errorf("address is required")
	}

	u, err := url.Parse(e.Address)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", e.Address, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid address %q: scheme must be http or https", e.Address)
	}

	if u.Host == "" {
		return fmt.Errorf("invalid address %q: missing host", e.Address)
	}

	return nil
}

// AuthConfig holds either an inline token or a reference to a keyring entry in
// the form "keyring:<key>".
type AuthConfig struct {
	Token    string `yaml:"token,omitempty"`
	TokenRef string `yaml:"token-ref,omitempty"`
}

const keyringRefPrefix = "keyring:"

func (a *AuthConfig) IsConfigured() bool {
	return a != nil && (a.Token != "" || a.TokenRef != "")
}

func (a *AuthConfig) KeyringKey() string {
	if a == nil || !strings.HasPrefix(a.TokenRef, keyringRefPrefix) {
		return ""
	}
	return strings.TrimPrefix(a.TokenRef, keyringRefPrefix)
}

func KeyringRef(key string) string {
	return keyringRefPrefix + key
}
