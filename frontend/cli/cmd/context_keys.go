package cmd

import (
	"context"

	api "github.com/furisto/taskview/api/go/client"
	"github.com/furisto/taskview/shared"
	"github.com/spf13/afero"
)

type contextKey string

const (
	ContextKeyAPIClient       contextKey = "api_client"
	ContextKeyEndpointContext contextKey = "endpoint_context"
	ContextKeyFileSystem      contextKey = "file_system"
	ContextKeyUserInfo        contextKey = "user_info"
	ContextKeyOutputRenderer  contextKey = "output_renderer"
	ContextKeyGlobalOptions   contextKey = "global_options"
	ContextKeyDisableFileLogs contextKey = "disable_file_logs"
	ContextKeyKeyring         contextKey = "keyring"
	ContextKeyTokenReader     contextKey = "token_reader"
)

func getAPIClient(ctx context.Context) api.TaskClient {
	client, ok := ctx.Value(ContextKeyAPIClient).(api.TaskClient)
	if !ok {
		return nil
	}
	return client
}

func getFileSystem(ctx context.Context) *afero.Afero {
	fs, ok := ctx.Value(ContextKeyFileSystem).(*afero.Afero)
	if !ok {
		return &afero.Afero{Fs: afero.NewOsFs()}
	}
	return fs
}

func getUserInfo(ctx context.Context) shared.UserInfo {
	userInfo, ok := ctx.Value(ContextKeyUserInfo).(shared.UserInfo)
	if !ok {
		return shared.NewDefaultUserInfo(getFileSystem(ctx))
	}
	return userInfo
}

func getGlobalOptions(ctx context.Context) *globalOptions {
	options, ok := ctx.Value(ContextKeyGlobalOptions).(*globalOptions)
	if !ok {
		return &globalOptions{}
	}
	return options
}

func setGlobalOptions(ctx context.Context, options *globalOptions) context.Context {
	return context.WithValue(ctx, ContextKeyGlobalOptions, options)
}
