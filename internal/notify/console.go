package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"lifeflow/internal/service"
)

// Console prints alerts to a writer. It needs no permission.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Permission() service.Permission {
	return service.PermissionGranted
}

func (c *Console) RequestPermission(context.Context) service.Permission {
	return service.PermissionGranted
}

func (c *Console) Notify(_ context.Context, n service.Notification) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	line := n.Title
	if n.Body != "" {
		line += " | " + n.Body
	}
	if n.Icon != "" {
		line = n.Icon + " " + line
	}
	_, err := fmt.Fprintln(c.out, line)
	return err == nil
}
