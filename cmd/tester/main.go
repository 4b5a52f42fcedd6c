// The tester dials a running relay and walks the full protocol surface:
// register, create, rehydrate, join, send, duplicate-reject, typing. It is a
// smoke tool for a deployed instance, not a substitute for the test suite.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type stepResult struct {
	Name   string
	OK     bool
	Detail string
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Tester error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return 2, fmt.Errorf("config error: %w", err)
	}

	results := runScenario(cfg)
	render(cfg, results)

	for _, r := range results {
		if !r.OK {
			return 1, nil
		}
	}
	return 0, nil
}

func runScenario(cfg Config) []stepResult {
	var results []stepResult
	step := func(name string, fn func() (string, error)) bool {
		detail, err := fn()
		if err != nil {
			results = append(results, stepResult{Name: name, OK: false, Detail: err.Error()})
			return false
		}
		results = append(results, stepResult{Name: name, OK: true, Detail: detail})
		return true
	}

	aliceID := "alice-" + uuid.NewString()[:8]
	bobID := "bob-" + uuid.NewString()[:8]
	chatID := "chat-" + uuid.NewString()[:8]
	messageID := uuid.NewString()

	var alice, bob *wsClient

	if !step("connect alice", func() (string, error) {
		var err error
		alice, err = dial(cfg.RelayURL, aliceID, "Alice")
		return cfg.RelayURL, err
	}) {
		return results
	}
	defer alice.close()

	step("register alice", func() (string, error) {
		if err := alice.emit("registerUser", map[string]string{"userId": aliceID, "userName": "Alice"}, nil); err != nil {
			return "", err
		}
		_, err := alice.expect("onlineUsers", cfg.Timeout)
		return "presence snapshot received", err
	})

	step("create chat with offline bob", func() (string, error) {
		err := alice.emit("createChat", map[string]any{
			"id":           chatID,
			"name":         "smoke",
			"participants": []string{aliceID, bobID},
			"topic":        "relay smoke test",
		}, nil)
		return chatID, err
	})

	if !step("connect bob", func() (string, error) {
		var err error
		bob, err = dial(cfg.RelayURL, bobID, "Bob")
		return "", err
	}) {
		return results
	}
	defer bob.close()

	step("bob rehydrated on registration", func() (string, error) {
		if err := bob.emit("registerUser", map[string]string{"userId": bobID, "userName": "Bob"}, nil); err != nil {
			return "", err
		}
		f, err := bob.expect("initialChats", cfg.Timeout)
		if err != nil {
			return "", err
		}
		var chats []map[string]any
		if err := json.Unmarshal(f.Data, &chats); err != nil {
			return "", err
		}
		for _, chat := range chats {
			if chat["id"] == chatID {
				return "initialChats contains the chat", nil
			}
		}
		return "", fmt.Errorf("chat %s missing from initialChats", chatID)
	})

	step("bob joins and receives history", func() (string, error) {
		if err := bob.emit("joinChat", map[string]string{"chatId": chatID, "userId": bobID}, nil); err != nil {
			return "", err
		}
		_, err := bob.expect("chatHistory", cfg.Timeout)
		return "chatHistory received", err
	})

	step("alice joins her own chat", func() (string, error) {
		if err := alice.emit("joinChat", map[string]string{"chatId": chatID, "userId": aliceID}, nil); err != nil {
			return "", err
		}
		_, err := alice.expect("chatHistory", cfg.Timeout)
		return "", err
	})

	messagePayload := map[string]any{
		"id":        messageID,
		"chatId":    chatID,
		"senderId":  aliceID,
		"text":      "hello from the tester",
		"timestamp": time.Now().UnixMilli(),
	}

	step("message acknowledged and delivered", func() (string, error) {
		ackID := 1
		if err := alice.emit("chatMessage", messagePayload, &ackID); err != nil {
			return "", err
		}
		ackFrame, err := alice.expect("ack", cfg.Timeout)
		if err != nil {
			return "", err
		}
		var ack struct {
			Success bool   `json:"success"`
			Reason  string `json:"reason"`
		}
		if err := json.Unmarshal(ackFrame.Data, &ack); err != nil {
			return "", err
		}
		if !ack.Success {
			return "", fmt.Errorf("first send rejected: %s", ack.Reason)
		}
		if _, err := bob.expect("chatMessage", cfg.Timeout); err != nil {
			return "", err
		}
		if _, err := bob.expect("messageStatus", cfg.Timeout); err != nil {
			return "", err
		}
		return "ack, broadcast and status observed", nil
	})

	step("duplicate send rejected", func() (string, error) {
		ackID := 2
		if err := alice.emit("chatMessage", messagePayload, &ackID); err != nil {
			return "", err
		}
		ackFrame, err := alice.expect("ack", cfg.Timeout)
		if err != nil {
			return "", err
		}
		var ack struct {
			Success bool   `json:"success"`
			Reason  string `json:"reason"`
		}
		if err := json.Unmarshal(ackFrame.Data, &ack); err != nil {
			return "", err
		}
		if ack.Success || ack.Reason != "duplicate" {
			return "", fmt.Errorf("expected duplicate rejection, got success=%v reason=%q", ack.Success, ack.Reason)
		}
		return "rejected with reason duplicate", nil
	})

	step("typing excludes the sender", func() (string, error) {
		if err := alice.emit("typing", map[string]string{"chatId": chatID, "userName": "Alice"}, nil); err != nil {
			return "", err
		}
		if _, err := bob.expect("typing", cfg.Timeout); err != nil {
			return "", err
		}
		if _, err := alice.expect("typing", 500*time.Millisecond); err == nil {
			return "", fmt.Errorf("sender received its own typing event")
		}
		return "delivered to bob only", nil
	})

	return results
}

func render(cfg Config, results []stepResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Step", "Result", "Detail"})

	for _, r := range results {
		status := "PASS"
		if !r.OK {
			status = "FAIL"
		}
		if cfg.Colours {
			if r.OK {
				status = color.Green.Render(status)
			} else {
				status = color.Red.Render(status)
			}
		}
		table.Append([]string{r.Name, status, r.Detail})
	}
	table.Render()
}
