package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeGit records invocations and scripts their results.
type fakeGit struct {
	calls   [][]string
	results map[string]result
}

type result struct {
	out string
	err error
}

func (f *fakeGit) run(_ context.Context, _ string, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	if r, ok := f.results[args[0]]; ok {
		return r.out, r.err
	}
	return "", nil
}

func newPublisher(t *testing.T, fake *fakeGit) *Publisher {
	t.Helper()
	p := NewPublisher(t.TempDir(), "origin", "main", filepath.Join(t.TempDir(), "publish_errors.log"))
	p.run = fake.run
	return p
}

func TestPublishFullRun(t *testing.T) {
	fake := &fakeGit{results: map[string]result{
		// Staged changes exist: diff --cached --quiet exits non-zero.
		"diff": {err: errors.New("exit status 1")},
	}}
	p := newPublisher(t, fake)

	msg, err := p.Publish(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if msg != "published" {
		t.Errorf("message = %q, want published", msg)
	}

	want := []string{"add", "diff", "commit", "push"}
	if len(fake.calls) != len(want) {
		t.Fatalf("git called %d times %v, want %v", len(fake.calls), fake.calls, want)
	}
	for i, w := range want {
		if fake.calls[i][0] != w {
			t.Errorf("call %d was %v, want %s", i, fake.calls[i], w)
		}
	}
	pushArgs := fake.calls[3]
	if pushArgs[1] != "origin" || pushArgs[2] != "main" {
		t.Errorf("push args = %v, want origin main", pushArgs)
	}
}

func TestPublishNothingStaged(t *testing.T) {
	// diff --cached --quiet exits zero: no staged changes.
	fake := &fakeGit{results: map[string]result{}}
	p := newPublisher(t, fake)

	msg, err := p.Publish(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if msg != "nothing to publish" {
		t.Errorf("message = %q", msg)
	}
	for _, call := range fake.calls {
		if call[0] == "commit" || call[0] == "push" {
			t.Errorf("should not %s when nothing is staged", call[0])
		}
	}
}

func TestPublishFailureLogsAndReturnsOutput(t *testing.T) {
	fake := &fakeGit{results: map[string]result{
		"diff": {err: errors.New("exit status 1")},
		"push": {out: "fatal: could not read from remote", err: errors.New("exit status 128")},
	}}
	p := newPublisher(t, fake)

	out, err := p.Publish(context.Background())
	if err == nil {
		t.Fatal("push failure must surface as an error")
	}
	if !strings.Contains(err.Error(), "could not read from remote") {
		t.Errorf("error lacks captured git output: %v", err)
	}
	if !strings.Contains(out, "could not read from remote") {
		t.Errorf("returned output = %q", out)
	}

	logged, rerr := os.ReadFile(p.LogFile)
	if rerr != nil {
		t.Fatalf("publish log not written: %v", rerr)
	}
	if !strings.Contains(string(logged), "git push failed") {
		t.Errorf("log content = %q", logged)
	}
}
