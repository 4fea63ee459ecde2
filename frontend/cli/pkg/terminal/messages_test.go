package terminal

import (
	"strings"
	"testing"
	"time"

	v1 "github.com/furisto/taskview/api/go/v1"
)

var start = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestRenderMessage(t *testing.T) {
	user := v1.TaskMessage{ID: "u1", Role: v1.MessageRoleUser, Content: "Please add tests", CreatedAt: start}
	agent := v1.TaskMessage{ID: "a1", Role: v1.MessageRoleAgent, Content: `{"result":"Tests added"}`, CreatedAt: start.Add(75 * time.Second)}
	running := &v1.Task{ID: "task-1", Status: v1.TaskStatusRunning}

	tests := []struct {
		name     string
		msg      v1.TaskMessage
		mc       MessageContext
		copied   bool
		contains []string
		excludes []string
	}{
		{
			name:     "waiting user message shows live timer",
			msg:      user,
			mc:       MessageContext{Messages: []v1.TaskMessage{user}, Task: running, Now: start.Add(42 * time.Second)},
			contains: []string{"You", "Please add tests", "00:42"},
		},
		{
			name:     "answered user message has no timer",
			msg:      user,
			mc:       MessageContext{Messages: []v1.TaskMessage{user, agent}, Task: running, Now: start.Add(time.Hour)},
			contains: []string{"You", "Please add tests"},
			excludes: []string{"01:15", "60:00"},
		},
		{
			name:     "agent payload is unwrapped",
			msg:      agent,
			mc:       MessageContext{Messages: []v1.TaskMessage{user, agent}, Task: running, Now: start.Add(time.Hour)},
			contains: []string{"Agent", "Tests", "added"},
			excludes: []string{`"result"`},
		},
		{
			name:     "copied indicator",
			msg:      agent,
			mc:       MessageContext{Messages: []v1.TaskMessage{user, agent}, Task: running},
			copied:   true,
			contains: []string{"copied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := plain(RenderMessage(tt.msg, tt.mc, tt.copied, false, 80))
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("RenderMessage() = %q, want it to contain %q", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("RenderMessage() = %q, must not contain %q", got, unwanted)
				}
			}
		})
	}
}
