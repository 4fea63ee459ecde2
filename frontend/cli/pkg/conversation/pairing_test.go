package conversation

import (
	"testing"
	"time"

	v1 "github.com/furisto/taskview/api/go/v1"
	"github.com/furisto/taskview/shared/conv"
)

func message(id string, role v1.MessageRole, offset time.Duration) v1.TaskMessage {
	return v1.TaskMessage{ID: id, Role: role, Content: id, CreatedAt: baseTime.Add(offset)}
}

func TestHasAgentResponse(t *testing.T) {
	t.Parallel()

	user := message("u1", v1.MessageRoleUser, 0)
	msgs := []v1.TaskMessage{user}

	if HasAgentResponse(msgs, user.CreatedAt) {
		t.Fatalf("HasAgentResponse() = true before any reply")
	}

	msgs = append(msgs, message("u2", v1.MessageRoleUser, 5*time.Second))
	if HasAgentResponse(msgs, user.CreatedAt) {
		t.Fatalf("HasAgentResponse() = true with only user follow-ups")
	}

	msgs = append(msgs, message("a1", v1.MessageRoleAgent, 10*time.Second))
	for i := 0; i < 3; i++ {
		if !HasAgentResponse(msgs, user.CreatedAt) {
			t.Fatalf("HasAgentResponse() = false after reply (poll %d)", i)
		}
		msgs = append(msgs, message("u-later", v1.MessageRoleUser, time.Duration(20+i)*time.Second))
	}

	if HasAgentResponse(msgs, baseTime.Add(time.Hour)) {
		t.Errorf("HasAgentResponse() = true for unknown timestamp")
	}
}

func TestHasAgentResponse_OnlyLaterPositions(t *testing.T) {
	t.Parallel()

	msgs := []v1.TaskMessage{
		message("a0", v1.MessageRoleAgent, 0),
		message("u1", v1.MessageRoleUser, time.Second),
	}
	if HasAgentResponse(msgs, msgs[1].CreatedAt) {
		t.Errorf("HasAgentResponse() counted an agent message positioned before the user message")
	}
}

func TestIsLatestUserMessage(t *testing.T) {
	t.Parallel()

	msgs := []v1.TaskMessage{
		message("u1", v1.MessageRoleUser, 0),
		message("a1", v1.MessageRoleAgent, time.Second),
		message("u2", v1.MessageRoleUser, 2*time.Second),
		message("a2", v1.MessageRoleAgent, 3*time.Second),
	}

	tests := []struct {
		name string
		msgs []v1.TaskMessage
		at   time.Time
		want bool
	}{
		{name: "older user message", msgs: msgs, at: msgs[0].CreatedAt, want: false},
		{name: "latest user message", msgs: msgs, at: msgs[2].CreatedAt, want: true},
		{name: "agent timestamp", msgs: msgs, at: msgs[3].CreatedAt, want: false},
		{name: "no user messages", msgs: msgs[3:], at: msgs[3].CreatedAt, want: false},
		{name: "empty list", msgs: nil, at: baseTime, want: false},
		{
			name: "equal instant in another zone",
			msgs: msgs,
			at:   msgs[2].CreatedAt.In(time.FixedZone("CET", 3600)),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLatestUserMessage(tt.msgs, tt.at); got != tt.want {
				t.Errorf("IsLatestUserMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	running := &v1.Task{ID: testTaskID, Status: v1.TaskStatusRunning}
	completed := &v1.Task{
		ID:          testTaskID,
		Status:      v1.TaskStatusCompleted,
		CompletedAt: conv.Ptr(baseTime.Add(3*time.Minute + 7*time.Second)),
	}

	user := message("u1", v1.MessageRoleUser, 0)
	replied := []v1.TaskMessage{
		user,
		message("u2", v1.MessageRoleUser, 30*time.Second),
		message("a1", v1.MessageRoleAgent, 75*time.Second),
		message("a2", v1.MessageRoleAgent, 90*time.Second),
	}
	waiting := []v1.TaskMessage{user}

	tests := []struct {
		name string
		msgs []v1.TaskMessage
		task *v1.Task
		now  time.Time
		want string
	}{
		{
			name: "first agent reply bounds the duration",
			msgs: replied,
			task: running,
			now:  baseTime.Add(time.Hour),
			want: "01:15",
		},
		{
			name: "reply wins over completion",
			msgs: replied,
			task: completed,
			now:  baseTime.Add(time.Hour),
			want: "01:15",
		},
		{
			name: "finished task without reply",
			msgs: waiting,
			task: completed,
			now:  baseTime.Add(time.Hour),
			want: "03:07",
		},
		{
			name: "finished without completion time stops at last message",
			msgs: []v1.TaskMessage{user, message("u2", v1.MessageRoleUser, 50*time.Second)},
			task: &v1.Task{Status: v1.TaskStatusFailed},
			now:  baseTime.Add(time.Hour),
			want: "00:50",
		},
		{
			name: "finished without completion time or later messages",
			msgs: waiting,
			task: &v1.Task{Status: v1.TaskStatusStopped},
			now:  baseTime.Add(time.Hour),
			want: "00:00",
		},
		{
			name: "active task uses now",
			msgs: waiting,
			task: running,
			now:  baseTime.Add(9*time.Second + 900*time.Millisecond),
			want: "00:09",
		},
		{
			name: "unknown task uses now",
			msgs: waiting,
			task: nil,
			now:  baseTime.Add(2 * time.Second),
			want: "00:02",
		},
		{
			name: "clock skew clamps to zero",
			msgs: waiting,
			task: running,
			now:  baseTime.Add(-5 * time.Second),
			want: "00:00",
		},
		{
			name: "minutes are not wrapped",
			msgs: waiting,
			task: running,
			now:  baseTime.Add(2*time.Hour + 5*time.Second),
			want: "120:05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.msgs, user.CreatedAt, tt.task, tt.now); got != tt.want {
				t.Errorf("FormatDuration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration_LiveTimer(t *testing.T) {
	t.Parallel()

	task := &v1.Task{ID: testTaskID, Status: v1.TaskStatusRunning}
	user := message("u1", v1.MessageRoleUser, 0)
	msgs := []v1.TaskMessage{user}

	var previous time.Duration
	for tick := 0; tick < 5; tick++ {
		now := baseTime.Add(time.Duration(tick) * time.Second)
		got := ResponseDuration(msgs, user.CreatedAt, task, now)
		if got < previous {
			t.Fatalf("tick %d: duration went backwards: %v < %v", tick, got, previous)
		}
		previous = got
	}

	msgs = append(msgs, message("a1", v1.MessageRoleAgent, 4*time.Second))
	for tick := 5; tick < 10; tick++ {
		now := baseTime.Add(time.Duration(tick) * time.Second)
		if got := FormatDuration(msgs, user.CreatedAt, task, now); got != "00:04" {
			t.Fatalf("tick %d: FormatDuration() = %q after reply, want frozen %q", tick, got, "00:04")
		}
	}
}

func TestShowsLiveTimer(t *testing.T) {
	t.Parallel()

	u1 := message("u1", v1.MessageRoleUser, 0)
	a1 := message("a1", v1.MessageRoleAgent, time.Second)
	u2 := message("u2", v1.MessageRoleUser, 2*time.Second)

	tests := []struct {
		name string
		msgs []v1.TaskMessage
		msg  v1.TaskMessage
		want bool
	}{
		{name: "latest unanswered", msgs: []v1.TaskMessage{u1, a1, u2}, msg: u2, want: true},
		{name: "older answered", msgs: []v1.TaskMessage{u1, a1, u2}, msg: u1, want: false},
		{name: "latest answered", msgs: []v1.TaskMessage{u1, a1}, msg: u1, want: false},
		{name: "agent message", msgs: []v1.TaskMessage{u1, a1}, msg: a1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShowsLiveTimer(tt.msgs, tt.msg); got != tt.want {
				t.Errorf("ShowsLiveTimer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()

	tests := map[time.Duration]string{
		0:                               "00:00",
		999 * time.Millisecond:          "00:00",
		time.Minute:                     "01:00",
		59*time.Minute + 59*time.Second: "59:59",
		-3 * time.Second:                "00:00",
	}
	for d, want := range tests {
		if got := FormatElapsed(d); got != want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", d, got, want)
		}
	}
}
