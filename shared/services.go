package shared

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	api "github.com/furisto/taskview/api/go/client"
	"github.com/furisto/taskview/shared/keyring"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const contextFileName = "context.yaml"

// ContextManager reads and writes the endpoint contexts of the CLI. Tokens are
// kept in the keyring and referenced from the context file.
type ContextManager struct {
	fs              *afero.Afero
	userInfo        UserInfo
	keyringProvider keyring.Provider
}

func NewContextManager(fs *afero.Afero, userInfo UserInfo) *ContextManager {
	return NewContextManagerWithKeyring(fs, userInfo, keyring.NewKeyringProvider())
}

func NewContextManagerWithKeyring(fs *afero.Afero, userInfo UserInfo, keyringProvider keyring.Provider) *ContextManager {
	return &ContextManager{
		fs:              fs,
		userInfo:        userInfo,
		keyringProvider: keyringProvider,
	}
}

func (m *ContextManager) contextFile() (string, error) {
	configDir, err := m.userInfo.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, contextFileName), nil
}

func (m *ContextManager) LoadContext() (*api.EndpointContexts, error) {
	path, err := m.contextFile()
	if err != nil {
		return nil, err
	}

	exists, err := m.fs.Exists(path)
	if err != nil {
		return nil, err
	}

	endpointContexts := api.EndpointContexts{}
	if exists {
		content, err := m.fs.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(content, &endpointContexts); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if endpointContexts.Contexts == nil {
		endpointContexts.Contexts = make(map[string]api.EndpointContext)
	}
	return &endpointContexts, nil
}

func (m *ContextManager) GetContext(contextName string) (*api.EndpointContext, error) {
	endpointContexts, err := m.LoadContext()
	if err != nil {
		return nil, err
	}

	ctx, ok := endpointContexts.Contexts[contextName]
	if !ok {
		return nil, fmt.Errorf("context %q not found", contextName)
	}
	return &ctx, nil
}

// UpsertContext creates or replaces contextName and reports whether it existed
// before.
func (m *ContextManager) UpsertContext(contextName string, address string, setCurrent bool, auth *api.AuthConfig) (bool, error) {
	endpointContexts, err := m.LoadContext()
	if err != nil {
		return false, err
	}

	endpointContext := api.EndpointContext{
		Address: address,
		Auth:    auth,
	}
	if err := endpointContext.Validate(); err != nil {
		return false, err
	}

	_, exists := endpointContexts.Contexts[contextName]
	endpointContexts.Contexts[contextName] = endpointContext

	if setCurrent || endpointContexts.CurrentContext == "" {
		previous := endpointContexts.CurrentContext
		if err := endpointContexts.SetCurrent(contextName); err != nil {
			return false, err
		}
		if previous != "" {
			endpointContexts.SetPrevious(previous)
		}
	}

	return exists, m.saveContext(endpointContexts)
}

func (m *ContextManager) DeleteContext(contextName string) error {
	endpointContexts, err := m.LoadContext()
	if err != nil {
		return err
	}

	ctx, ok := endpointContexts.Contexts[contextName]
	if !ok {
		return fmt.Errorf("context %q not found", contextName)
	}

	if key := ctx.Auth.KeyringKey(); key != "" {
		if err := m.keyringProvider.Delete(key); err != nil && !errors.Is(err, &keyring.ErrSecretNotFound{}) {
			return fmt.Errorf("failed to delete token from keyring: %w", err)
		}
	}

	delete(endpointContexts.Contexts, contextName)
	if endpointContexts.CurrentContext == contextName {
		endpointContexts.CurrentContext = ""
	}
	if endpointContexts.PreviousContext == contextName {
		endpointContexts.PreviousContext = ""
	}

	return m.saveContext(endpointContexts)
}

func (m *ContextManager) SetCurrentContext(contextName string) error {
	endpointContexts, err := m.LoadContext()
	if err != nil {
		return err
	}

	previousContext := endpointContexts.CurrentContext
	if err := endpointContexts.SetCurrent(contextName); err != nil {
		return err
	}
	if previousContext != "" {
		endpointContexts.SetPrevious(previousContext)
	}

	return m.saveContext(endpointContexts)
}

func (m *ContextManager) StoreToken(key string, token string) error {
	return m.keyringProvider.Set(key, token)
}

func (m *ContextManager) RetrieveToken(key string) (string, error) {
	return m.keyringProvider.Get(key)
}

func (m *ContextManager) saveContext(endpointContexts *api.EndpointContexts) error {
	path, err := m.contextFile()
	if err != nil {
		return err
	}

	content, err := yaml.Marshal(endpointContexts)
	if err != nil {
		return err
	}

	if err := m.fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return m.fs.WriteFile(path, content, 0600)
}

//go:generate mockgen -destination=mocks/user_info_mock.go -package=mocks . UserInfo
type UserInfo interface {
	HomeDir() (string, error)
	ConfigDir() (string, error)
	LogDir() (string, error)
}

type DefaultUserInfo struct {
	fs *afero.Afero
}

func NewDefaultUserInfo(fs *afero.Afero) *DefaultUserInfo {
	return &DefaultUserInfo{fs: fs}
}

func (u *DefaultUserInfo) HomeDir() (string, error) {
	return os.UserHomeDir()
}

func (u *DefaultUserInfo) ConfigDir() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, "taskview")
	if err := u.fs.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

func (u *DefaultUserInfo) LogDir() (string, error) {
	var logDir string
	switch runtime.GOOS {
	case "darwin":
		homeDir, err := u.HomeDir()
		if err != nil {
			return "", err
		}
		logDir = filepath.Join(homeDir, "Library", "Logs", "taskview")
	default:
		logDir = filepath.Join(xdg.StateHome, "taskview")
	}

	if err := u.fs.MkdirAll(logDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return logDir, nil
}

var _ UserInfo = (*DefaultUserInfo)(nil)
