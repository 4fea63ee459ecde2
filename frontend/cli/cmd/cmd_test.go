package cmd

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	api_client "github.com/furisto/taskview/api/go/client"
	"github.com/furisto/taskview/shared/mocks"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"go.uber.org/mock/gomock"
)

const (
	testHomeDir   = "/home/user"
	testConfigDir = "/home/user/.config/taskview"
	testLogDir    = "/home/user/.local/state/taskview"
)

var ansiSequence = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type MockRenderer struct {
	DisplayedObjects any
	DisplayFormat    *RenderOptions
}

func (m *MockRenderer) Render(resources any, options *RenderOptions) error {
	m.DisplayedObjects = resources
	if options != nil && options.Format != "" {
		m.DisplayFormat = options
	}
	return nil
}

type TestSetup struct {
	CmpOptions []cmp.Option
}

type TestScenario struct {
	Name            string
	Command         []string
	Stdin           string
	Token           string
	SetupMocks      func(mockClient *api_client.MockTaskClient)
	SetupFileSystem func(fs *afero.Afero)
	SetupEnv        map[string]string
	SetupUserInfo   func(userInfo *mocks.MockUserInfo)
	SetupKeyring    func(provider *mocks.MockProvider)
	// TextOutput renders through the default renderer instead of recording
	// the displayed objects.
	TextOutput bool
	Expected   TestExpectation
}

type TestExpectation struct {
	Stdout           *string
	Error            string
	DisplayedObjects any
	DisplayFormat    *RenderOptions
}

func (s *TestSetup) RunTests(t *testing.T, scenarios []TestScenario) {
	if len(scenarios) == 0 {
		t.Fatalf("no scenarios provided")
	}

	cmpOptions := append([]cmp.Option{
		cmpopts.IgnoreUnexported(FilesDisplay{}, MessagesDisplay{}),
	}, s.CmpOptions...)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockClient := api_client.NewMockTaskClient(ctrl)
			if scenario.SetupMocks != nil {
				scenario.SetupMocks(mockClient)
			}

			userInfo := mocks.NewMockUserInfo(ctrl)
			if scenario.SetupUserInfo != nil {
				scenario.SetupUserInfo(userInfo)
			} else {
				setupDefaultUserInfo(userInfo)
			}

			provider := mocks.NewMockProvider(ctrl)
			if scenario.SetupKeyring != nil {
				scenario.SetupKeyring(provider)
			}

			fs := &afero.Afero{Fs: afero.NewMemMapFs()}
			if scenario.SetupFileSystem != nil {
				scenario.SetupFileSystem(fs)
			}

			for key, value := range scenario.SetupEnv {
				t.Setenv(key, value)
			}

			testCmd := NewRootCmd()

			var stdin bytes.Buffer
			stdin.WriteString(scenario.Stdin)
			testCmd.SetIn(&stdin)

			var stdout, stderr bytes.Buffer
			testCmd.SetOut(&stdout)
			testCmd.SetErr(&stderr)

			token := scenario.Token
			mockRenderer := &MockRenderer{}
			ctx := context.Background()
			ctx = context.WithValue(ctx, ContextKeyAPIClient, api_client.TaskClient(mockClient))
			ctx = context.WithValue(ctx, ContextKeyFileSystem, fs)
			ctx = context.WithValue(ctx, ContextKeyUserInfo, userInfo)
			ctx = context.WithValue(ctx, ContextKeyKeyring, provider)
			ctx = context.WithValue(ctx, ContextKeyDisableFileLogs, true)
			ctx = context.WithValue(ctx, ContextKeyTokenReader, tokenReader(func() ([]byte, error) {
				return []byte(token), nil
			}))
			if !scenario.TextOutput {
				ctx = context.WithValue(ctx, ContextKeyOutputRenderer, mockRenderer)
			}

			testCmd.SetArgs(scenario.Command)

			var actual TestExpectation
			err := testCmd.ExecuteContext(ctx)
			if err != nil {
				actual.Error = ansiSequence.ReplaceAllString(err.Error(), "")
			}

			actual.DisplayedObjects = mockRenderer.DisplayedObjects
			actual.DisplayFormat = mockRenderer.DisplayFormat
			if scenario.Expected.Stdout != nil {
				out := ansiSequence.ReplaceAllString(stdout.String(), "")
				actual.Stdout = &out
			}

			if diff := cmp.Diff(scenario.Expected, actual, cmpOptions...); diff != "" {
				t.Errorf("%s() mismatch (-want +got):\n%s", scenario.Name, diff)
			}
		})
	}
}

func setupDefaultUserInfo(userInfo *mocks.MockUserInfo) {
	userInfo.EXPECT().HomeDir().Return(testHomeDir, nil).AnyTimes()
	userInfo.EXPECT().ConfigDir().Return(testConfigDir, nil).AnyTimes()
	userInfo.EXPECT().LogDir().Return(testLogDir, nil).AnyTimes()
}

func stringPtr(s string) *string {
	return &s
}
