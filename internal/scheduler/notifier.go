package scheduler

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

var ErrNoDeliveryPath = errors.New("scheduler: no notification delivery path")

// Notifier is the OS notification collaborator. Implementations own trigger
// delivery; the caller's responsibility ends once a request is issued.
type Notifier interface {
	RequestAuthorization() error
	Schedule(tr Trigger) error
	Cancel(id string)
	CancelAll()
	ListPending() []string
}

// Sender delivers one notification immediately.
type Sender interface {
	Send(title, body string) error
}

type NoopSender struct{}

func (NoopSender) Send(string, string) error { return nil }

// ExecSender shells out to the platform notification command.
type ExecSender struct{}

func (ExecSender) Send(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// LocalNotifier backs the Notifier contract with the in-process trigger
// engine, delivering fired triggers through a Sender. Delivery failures are
// logged and dropped.
type LocalNotifier struct {
	engine *Engine
	sender Sender
	done   chan struct{}
}

func NewLocalNotifier(engine *Engine, sender Sender) *LocalNotifier {
	if sender == nil {
		sender = NoopSender{}
	}
	n := &LocalNotifier{engine: engine, sender: sender, done: make(chan struct{})}
	engine.Start()
	go n.deliver()
	return n
}

func (n *LocalNotifier) deliver() {
	defer close(n.done)
	for tr := range n.engine.C() {
		if err := n.sender.Send(tr.Title, tr.Body); err != nil {
			log.Printf("notification delivery failed for %s: %v", tr.ID, err)
		}
	}
}

// RequestAuthorization checks that a delivery command exists on this
// platform. Absence is reported, not fatal.
func (n *LocalNotifier) RequestAuthorization() error {
	if runtime.GOOS != "linux" {
		return nil
	}
	if _, err := exec.LookPath("notify-send"); err != nil {
		return fmt.Errorf("%w: %v", ErrNoDeliveryPath, err)
	}
	return nil
}

func (n *LocalNotifier) Schedule(tr Trigger) error {
	return n.engine.Schedule(tr)
}

func (n *LocalNotifier) Cancel(id string) {
	n.engine.Cancel(id)
}

func (n *LocalNotifier) CancelAll() {
	n.engine.CancelAll()
}

func (n *LocalNotifier) ListPending() []string {
	return n.engine.Pending()
}

// Close stops the engine and waits for the delivery goroutine to drain.
func (n *LocalNotifier) Close() {
	n.engine.Stop()
	<-n.done
}
