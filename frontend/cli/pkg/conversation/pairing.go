package conversation

import (
	"fmt"
	"time"

	v1 "github.com/furisto/taskview/api/go/v1"
)

// Messages are located by their creation timestamp. Two messages sharing the
// exact same timestamp resolve to the first one in the list.
func indexAt(msgs []v1.TaskMessage, createdAt time.Time) int {
	for i, m := range msgs {
		if m.CreatedAt.Equal(createdAt) {
			return i
		}
	}
	return -1
}

// firstAgentReply returns the first agent message positioned after the message
// created at userMsgTime.
func firstAgentReply(msgs []v1.TaskMessage, userMsgTime time.Time) (v1.TaskMessage, bool) {
	idx := indexAt(msgs, userMsgTime)
	if idx < 0 {
		return v1.TaskMessage{}, false
	}
	for _, m := range msgs[idx+1:] {
		if m.Role == v1.MessageRoleAgent {
			return m, true
		}
	}
	return v1.TaskMessage{}, false
}

func HasAgentResponse(msgs []v1.TaskMessage, userMsgTime time.Time) bool {
	_, ok := firstAgentReply(msgs, userMsgTime)
	return ok
}

func IsLatestUserMessage(msgs []v1.TaskMessage, userMsgTime time.Time) bool {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == v1.MessageRoleUser {
			return msgs[i].CreatedAt.Equal(userMsgTime)
		}
	}
	return false
}

// ResponseDuration is the time the agent took to answer the message created at
// userMsgTime. Without a reply it runs until the task finished, or until now
// while the task is active. A finished task without a completion time stops at
// its last message. Negative spans from clock skew count as zero.
func ResponseDuration(msgs []v1.TaskMessage, userMsgTime time.Time, task *v1.Task, now time.Time) time.Duration {
	end := now
	if reply, ok := firstAgentReply(msgs, userMsgTime); ok {
		end = reply.CreatedAt
	} else if task.Finished() {
		switch {
		case task.CompletedAt != nil:
			end = *task.CompletedAt
		case len(msgs) > 0:
			end = msgs[len(msgs)-1].CreatedAt
		}
	}

	elapsed := end.Sub(userMsgTime).Truncate(time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func FormatDuration(msgs []v1.TaskMessage, userMsgTime time.Time, task *v1.Task, now time.Time) string {
	return FormatElapsed(ResponseDuration(msgs, userMsgTime, task, now))
}

// FormatElapsed renders d as zero padded MM:SS. Minutes are not wrapped into
// hours.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ShowsLiveTimer reports whether msg is the latest user message and still
// waits for an agent reply.
func ShowsLiveTimer(msgs []v1.TaskMessage, msg v1.TaskMessage) bool {
	if msg.Role != v1.MessageRoleUser {
		return false
	}
	return IsLatestUserMessage(msgs, msg.CreatedAt) && !HasAgentResponse(msgs, msg.CreatedAt)
}
