package fail

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	api_client "github.com/furisto/taskview/api/go/client"
	"github.com/furisto/taskview/frontend/cli/pkg/terminal"
)

type UserError struct {
	Cause       error
	UserMessage string
	Solutions   []string
	TechDetails string
}

func (e *UserError) Error() string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("%s %s\n\n", terminal.ErrorSymbol, terminal.Bold(e.UserMessage)))

	if len(e.Solutions) > 0 {
		msg.WriteString(fmt.Sprintf("%s Try these solutions:\n", terminal.InfoSymbol))
		for i, solution := range e.Solutions {
			msg.WriteString(fmt.Sprintf("  %d. %s\n", i+1, solution))
		}
		msg.WriteString("\n")
	}

	if e.TechDetails != "" {
		msg.WriteString(fmt.Sprintf("Technical details: %s\n", e.TechDetails))
	}

	return msg.String()
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

func NewPermissionError(path string, err error) *UserError {
	return &UserError{
		Cause:       err,
		UserMessage: fmt.Sprintf("Permission denied accessing %s", path),
		Solutions: []string{
			"Check file permissions and ownership",
			"Ensure you have write access to the directory",
			"Verify the path exists and is accessible",
		},
		TechDetails: fmt.Sprintf("Failed to access %s: %v", path, err),
	}
}

func NewConnectionError(address string, err error) *UserError {
	var solutions []string

	switch {
	case strings.Contains(err.Error(), "connection refused"):
		solutions = []string{
			"Check if the task service is running",
			"Verify the address of the current context: taskview context current",
			"Switch to another context: taskview context use <name>",
		}
	case strings.Contains(err.Error(), "no such host"):
		solutions = []string{
			"Check the host name of the current context for typos",
			"Verify your network and DNS settings",
		}
	case strings.Contains(err.Error(), "deadline exceeded"), strings.Contains(err.Error(), "timeout"):
		solutions = []string{
			"The service did not answer in time, try again in a few seconds",
			"Check your network connection",
		}
	default:
		solutions = []string{
			"Verify the address of the current context: taskview context current",
			"Check your network connection",
		}
	}

	techDetails := fmt.Sprintf("Connection failed: %v", err)
	if address != "" {
		techDetails = fmt.Sprintf("Connection failed to %s: %v", address, err)
	}

	return &UserError{
		Cause:       err,
		UserMessage: "Cannot connect to the task service",
		Solutions:   solutions,
		TechDetails: techDetails,
	}
}

func NewAuthenticationError(address string, err error) *UserError {
	return &UserError{
		Cause:       err,
		UserMessage: "The task service rejected the credentials",
		Solutions: []string{
			"Store a new token: taskview context add <name> --endpoint " + address + " --auth-token",
			"Check that the token has not expired",
		},
		TechDetails: err.Error(),
	}
}

func NewNotFoundError(taskID string, err error) *UserError {
	return &UserError{
		Cause:       err,
		UserMessage: fmt.Sprintf("Task %s was not found", taskID),
		Solutions: []string{
			"Check the task ID for typos",
			"Make sure the current context points at the right service: taskview context current",
		},
		TechDetails: err.Error(),
	}
}

// EnhanceError turns well known failures into a UserError. Recognised context
// keys are "address", "task_id" and "path".
func EnhanceError(err error, context map[string]any) error {
	if err == nil {
		return nil
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return err
	}

	address, _ := context["address"].(string)

	if apiErr, ok := api_client.AsAPIError(err); ok {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return NewAuthenticationError(address, err)
		case http.StatusNotFound:
			if taskID, ok := context["task_id"].(string); ok {
				return NewNotFoundError(taskID, err)
			}
		}
		return err
	}

	if api_client.IsTransportError(err) {
		return NewConnectionError(address, err)
	}

	if os.IsPermission(err) {
		if path, ok := context["path"].(string); ok {
			return NewPermissionError(path, err)
		}
	}

	if strings.Contains(err.Error(), "address already in use") {
		return &UserError{
			Cause:       err,
			UserMessage: "The metrics address is already in use by another process",
			Solutions: []string{
				"Choose a different port: --metrics-addr 127.0.0.1:9465",
				"Stop the process using this port",
				"Leave --metrics-addr empty to disable the metrics endpoint",
			},
			TechDetails: err.Error(),
		}
	}

	return err
}
