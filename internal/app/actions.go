package app

import (
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/bezmoradi/keycycle/internal/binding"
	"github.com/bezmoradi/keycycle/internal/clipboard"
	"github.com/bezmoradi/keycycle/internal/console"
	"github.com/bezmoradi/keycycle/internal/feedback"
)

// builtinActions returns the actions config layouts can bind to.
func builtinActions(c *console.Console, notifier *feedback.Notifier, paster *clipboard.Paster) *binding.Actions {
	actions := binding.NewActions()

	actions.Register("echo", func(args ...any) {
		c.Status("💬 %s", joinArgs(args))
	})

	actions.Register("exec", func(args ...any) {
		if len(args) == 0 {
			log.Printf("[ACTION] exec: no command given")
			return
		}
		argv := make([]string, len(args))
		for i, a := range args {
			argv[i] = fmt.Sprint(a)
		}

		cmd := exec.Command(argv[0], argv[1:]...)
		if err := cmd.Start(); err != nil {
			log.Printf("[ACTION] exec %s: %v", argv[0], err)
			c.Warn("❌ Failed to run %s: %v", argv[0], err)
			return
		}
		log.Printf("[ACTION] started %s (pid %d)", argv[0], cmd.Process.Pid)
		go func() {
			if err := cmd.Wait(); err != nil {
				log.Printf("[ACTION] %s exited: %v", argv[0], err)
			}
		}()
	})

	actions.Register("notify", func(args ...any) {
		title, message := "keycycle", joinArgs(args)
		if len(args) > 1 {
			title, message = fmt.Sprint(args[0]), joinArgs(args[1:])
		}
		if err := notifier.Show(title, message); err != nil {
			log.Printf("[ACTION] %v", err)
		}
	})

	actions.Register("paste", func(args ...any) {
		if err := paster.PasteTextSafely(joinArgs(args)); err != nil {
			log.Printf("[ACTION] %v", err)
			c.Warn("❌ Paste failed: %v", err)
		}
	})

	actions.Register("beep", func(args ...any) {
		notifier.Play(feedback.ToneSwitch)
	})

	return actions
}

func joinArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, " ")
}
