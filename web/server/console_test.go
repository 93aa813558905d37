package server

import (
	"testing"
	"time"
)

func TestWebLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-render-123", messageChan)

	testMessage := "Test log message"
	logger.Printf("%s\n", testMessage)

	select {
	case msg := <-messageChan:
		expectedMessage := testMessage + "\n"
		if msg.Message != expectedMessage {
			t.Errorf("Expected message '%s', got '%s'", expectedMessage, msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if msg.RenderID != "test-render-123" {
			t.Errorf("Expected render ID to be attached, got '%s'", msg.RenderID)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	default:
		t.Error("Expected the message to be buffered synchronously")
	}
}

func TestWebLogger_FailureLevel(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []interface{}
		level  string
	}{
		{"failed pixels", "Render finished with failed pixels: %v\n", []interface{}{"boom"}, "error"},
		{"clean stats", "Render complete: %s\n", []interface{}{"200 pixels, 400 samples, 0 failed, 2 workers in 3ms"}, "info"},
		{"stats with failures", "Render complete: %s\n", []interface{}{"200 pixels, 400 samples, 3 failed, 2 workers in 3ms"}, "info"},
		{"plain progress", "Rendering %dx%d\n", []interface{}{20, 10}, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messageChan := make(chan ConsoleMessage, 1)
			logger := NewWebLogger("test-render-level", messageChan)

			logger.Printf(tt.format, tt.args...)

			if msg := <-messageChan; msg.Level != tt.level {
				t.Errorf("Expected level '%s', got '%s' for %q", tt.level, msg.Level, msg.Message)
			}
		})
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger("test-render-789", messageChan)

	// The second and third messages are dropped rather than blocking
	logger.Printf("Message 1\n")
	logger.Printf("Message 2\n")
	logger.Printf("Message 3\n")

	if len(messageChan) != 1 {
		t.Fatalf("Expected one buffered message, got %d", len(messageChan))
	}
	if msg := <-messageChan; msg.Message != "Message 1\n" {
		t.Errorf("Expected the first message to be kept, got '%s'", msg.Message)
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger("test-render-nil", nil)
	logger.Printf("Test message with nil channel\n")
}

func TestConsole_DrainAndTrim(t *testing.T) {
	console := NewConsole(3)
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("render-1", messageChan)

	for _, text := range []string{"a", "b", "c", "d"} {
		logger.Printf("%s", text)
	}

	drained := console.Drain(messageChan)
	if len(drained) != 4 {
		t.Fatalf("Expected 4 drained messages, got %d", len(drained))
	}
	if len(messageChan) != 0 {
		t.Errorf("Expected channel to be empty after drain, %d left", len(messageChan))
	}

	history := console.Messages()
	if len(history) != 3 {
		t.Fatalf("Expected history trimmed to 3, got %d", len(history))
	}
	for i, expected := range []string{"b", "c", "d"} {
		if history[i].Message != expected {
			t.Errorf("History %d: expected '%s', got '%s'", i, expected, history[i].Message)
		}
	}

	// The returned slice is a copy
	history[0].Message = "changed"
	if console.Messages()[0].Message != "b" {
		t.Error("Messages should return a copy of the history")
	}
}

func TestConsole_DrainEmpty(t *testing.T) {
	console := NewConsole(defaultConsoleSize)
	if drained := console.Drain(make(chan ConsoleMessage)); len(drained) != 0 {
		t.Errorf("Expected nothing drained, got %d", len(drained))
	}
	if len(console.Messages()) != 0 {
		t.Error("Expected empty history")
	}
}
