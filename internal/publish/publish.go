// Package publish pushes the site directory to a git remote: stage
// everything, commit if anything changed, push. Failures carry the
// captured git output and are appended to a side log for later
// inspection; they are never fatal to the running process.
package publish

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const commitMessage = "Update dashboard"

// runner executes one git command in dir and returns its combined output.
// Injectable for tests.
type runner func(ctx context.Context, dir string, args ...string) (string, error)

func gitRunner(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Publisher publishes one site directory to one remote/branch.
type Publisher struct {
	Dir     string
	Remote  string
	Branch  string
	LogFile string

	run runner
}

func NewPublisher(dir, remote, branch, logFile string) *Publisher {
	return &Publisher{
		Dir:     dir,
		Remote:  remote,
		Branch:  branch,
		LogFile: logFile,
		run:     gitRunner,
	}
}

// Publish stages, commits and pushes the site directory. When nothing is
// staged it returns a message and no error. Any git failure is logged to
// LogFile and returned with the captured output.
func (p *Publisher) Publish(ctx context.Context) (string, error) {
	if out, err := p.run(ctx, p.Dir, "add", "-A"); err != nil {
		return out, p.fail("git add", out, err)
	}

	// Exit status 1 from diff --cached --quiet means staged changes exist.
	if _, err := p.run(ctx, p.Dir, "diff", "--cached", "--quiet"); err == nil {
		return "nothing to publish", nil
	}

	if out, err := p.run(ctx, p.Dir, "commit", "-m", commitMessage); err != nil {
		return out, p.fail("git commit", out, err)
	}
	if out, err := p.run(ctx, p.Dir, "push", p.Remote, p.Branch); err != nil {
		return out, p.fail("git push", out, err)
	}
	return "published", nil
}

// fail wraps a git failure and appends a timestamped diagnostic line to
// the publish log. Log writing is best-effort.
func (p *Publisher) fail(step, out string, err error) error {
	wrapped := fmt.Errorf("%s failed: %w: %s", step, err, strings.TrimSpace(out))
	if p.LogFile != "" {
		line := fmt.Sprintf("%s %s\n", time.Now().Format(time.RFC3339), wrapped)
		if f, ferr := os.OpenFile(p.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); ferr == nil {
			_, _ = f.WriteString(line)
			f.Close()
		}
	}
	return wrapped
}
