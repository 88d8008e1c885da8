package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandSink runs an external notifier such as notify-send. The
// placeholders {title} and {body} in any argument are substituted.
type CommandSink struct {
	Argv    []string
	Timeout time.Duration
}

// NewCommandSink returns a sink for argv, or nil when argv is empty.
func NewCommandSink(argv []string) *CommandSink {
	if len(argv) == 0 {
		return nil
	}
	return &CommandSink{Argv: argv, Timeout: 5 * time.Second}
}

// Args returns the argument list with placeholders expanded.
func (s *CommandSink) Args(title, body string) []string {
	r := strings.NewReplacer("{title}", title, "{body}", body)
	out := make([]string, len(s.Argv))
	for i, a := range s.Argv {
		out[i] = r.Replace(a)
	}
	return out
}

func (s *CommandSink) Notify(title, body string) error {
	if s == nil || len(s.Argv) == 0 {
		return errors.New("notify: no command configured")
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := s.Args(title, body)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // user-configured notifier
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify: running %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return nil
}
