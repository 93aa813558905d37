package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

const defaultConsoleSize = 256

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	// Also write to stdout for server logs
	fmt.Print(message)

	if wl.consoleChan == nil {
		return
	}

	// Stats lines report a failed count too, so only the failure line is an error
	level := "info"
	if strings.Contains(strings.ToLower(message), "failed pixels:") {
		level = "error"
	}

	// Never block the render on a slow console
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     level,
	}:
	default:
	}
}

// Console keeps the most recent messages across renders
type Console struct {
	mu       sync.Mutex
	size     int
	messages []ConsoleMessage
}

// NewConsole creates a console holding at most size messages
func NewConsole(size int) *Console {
	return &Console{size: max(1, size)}
}

// Append records messages, dropping the oldest beyond the console size
func (c *Console) Append(messages ...ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, messages...)
	if overflow := len(c.messages) - c.size; overflow > 0 {
		c.messages = append([]ConsoleMessage(nil), c.messages[overflow:]...)
	}
}

// Drain moves everything currently buffered on ch into the console and returns it
func (c *Console) Drain(ch <-chan ConsoleMessage) []ConsoleMessage {
	var drained []ConsoleMessage
	for {
		select {
		case msg := <-ch:
			drained = append(drained, msg)
		default:
			c.Append(drained...)
			return drained
		}
	}
}

// Messages returns a copy of the history, oldest first
func (c *Console) Messages() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConsoleMessage(nil), c.messages...)
}

func (s *Server) handleConsole(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"messages": s.console.Messages()})
}
