// Package commontest provides a scripted common.Runner for tests.
package commontest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"radiantwavetech.com/radiantwave-updater/internal/service/common"
)

// Reply is the scripted outcome of one command.
type Reply struct {
	Result common.Result
	Err    error
}

// Ok is a successful reply with the given stdout.
func Ok(stdout string) Reply {
	return Reply{Result: common.Result{Stdout: stdout}}
}

// Fail is a non-zero exit reply with the given stderr.
func Fail(code int, stderr string) Reply {
	return Reply{
		Result: common.Result{ExitCode: code, Stderr: stderr},
		Err:    fmt.Errorf("exit code %d: %w", code, common.ErrCommandFailed),
	}
}

// Timeout is a reply for a command that outlived its timeout.
func Timeout() Reply {
	return Reply{
		Result: common.Result{ExitCode: -1},
		Err:    common.ErrCommandTimeout,
	}
}

// Missing is a reply for an executable that does not exist.
func Missing() Reply {
	return Reply{
		Result: common.Result{ExitCode: -1},
		Err:    common.ErrCommandNotFound,
	}
}

type rule struct {
	prefix  string
	replies []Reply
}

// Runner answers commands by the longest registered prefix of their key.
// Replies registered for one prefix are consumed in order; the last one sticks.
// Commands without a rule are answered with Missing.
type Runner struct {
	mu    sync.Mutex
	rules []*rule
	calls []common.Command
}

// On registers replies for commands whose key starts with prefix.
func (r *Runner) On(prefix string, replies ...Reply) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, &rule{prefix: prefix, replies: replies})

	return r
}

// Run implements common.Runner.
func (r *Runner) Run(_ context.Context, cmd common.Command) (*common.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, cmd)

	var (
		key   = Key(cmd)
		match *rule
	)

	for _, candidate := range r.rules {
		if !strings.HasPrefix(key, candidate.prefix) || len(candidate.replies) == 0 {
			continue
		}

		if match == nil || len(candidate.prefix) > len(match.prefix) {
			match = candidate
		}
	}

	reply := Missing()

	if match != nil {
		reply = match.replies[0]

		if len(match.replies) > 1 {
			match.replies = match.replies[1:]
		}
	}

	result := reply.Result

	return &result, reply.Err
}

// Calls returns the commands seen so far.
func (r *Runner) Calls() []common.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]common.Command(nil), r.calls...)
}

// Keys returns the keys of the commands seen so far, in order.
func (r *Runner) Keys() []string {
	calls := r.Calls()
	keys := make([]string, 0, len(calls))

	for _, cmd := range calls {
		keys = append(keys, Key(cmd))
	}

	return keys
}

// Count returns how many commands had a key starting with prefix.
func (r *Runner) Count(prefix string) int {
	count := 0

	for _, key := range r.Keys() {
		if strings.HasPrefix(key, prefix) {
			count++
		}
	}

	return count
}

// Elevated returns the commands that asked for privilege escalation.
func (r *Runner) Elevated() []common.Command {
	var elevated []common.Command

	for _, cmd := range r.Calls() {
		if cmd.Elevated {
			elevated = append(elevated, cmd)
		}
	}

	return elevated
}

// Key renders the command as "name arg1 arg2".
func Key(cmd common.Command) string {
	return strings.Join(append([]string{cmd.Name}, cmd.Args...), " ")
}
