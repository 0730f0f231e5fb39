package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type action struct {
	Name        string
	Description string
}

type model struct {
	actions  []action
	selected int
	status   string
	metrics  string
	busy     bool
}

func initialModel() model {
	return model{
		actions: []action{
			{"register", "Register a fresh user"},
			{"login", "Register then log in"},
			{"products", "List the catalog"},
			{"checkout", "Full flow: cart -> discount -> checkout"},
			{"bench", "Run a short checkout benchmark"},
		},
		status: "Ready",
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up":
			if m.selected > 0 {
				m.selected--
			}
		case "down":
			if m.selected < len(m.actions)-1 {
				m.selected++
			}
		case "enter":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Running..."
			return m, runActionCmd(m.actions[m.selected].Name)
		}
	case actionResult:
		m.busy = false
		m.status = msg.status
		m.metrics = msg.metrics
	}
	return m, nil
}

func (m model) View() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "shop-lab-ecommerce-go CLI")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "Actions:")
	for i, a := range m.actions {
		marker := " "
		if i == m.selected {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %s - %s\n", marker, a.Name, a.Description)
	}
	fmt.Fprintln(b, "")
	fmt.Fprintf(b, "Status: %s\n", m.status)
	if m.metrics != "" {
		fmt.Fprintf(b, "Metrics: %s\n", m.metrics)
	}
	fmt.Fprintln(b, "\nControls: up/down select, enter to run, q to quit")
	return b.String()
}

type actionResult struct {
	status  string
	metrics string
}

func runActionCmd(name string) tea.Cmd {
	return func() tea.Msg {
		baseURL := getenv("SHOP_BASE_URL", "http://localhost:8080")
		switch name {
		case "register":
			email := freshEmail()
			resp, err := postJSON(baseURL, "/register", map[string]any{"email": email, "password": "s3cret!"}, "")
			if err != nil {
				return actionResult{status: fmt.Sprintf("Register failed: %v", err)}
			}
			return actionResult{status: fmt.Sprintf("Registered %s: %s", email, resp)}
		case "login":
			email := freshEmail()
			if _, err := postJSON(baseURL, "/register", map[string]any{"email": email, "password": "s3cret!"}, ""); err != nil {
				return actionResult{status: fmt.Sprintf("Register failed: %v", err)}
			}
			resp, err := postJSON(baseURL, "/login", map[string]any{"email": email, "password": "s3cret!"}, "")
			if err != nil {
				return actionResult{status: fmt.Sprintf("Login failed: %v", err)}
			}
			return actionResult{status: fmt.Sprintf("Login OK: %s", resp)}
		case "products":
			resp, err := getJSON(baseURL, "/products")
			if err != nil {
				return actionResult{status: fmt.Sprintf("Products failed: %v", err)}
			}
			return actionResult{status: "Products: " + resp}
		case "bench":
			return actionResult{status: "Benchmark finished", metrics: runBenchmark(baseURL)}
		default:
			resp, err := runCheckout(baseURL)
			if err != nil {
				return actionResult{status: fmt.Sprintf("Checkout failed: %v", err)}
			}
			return actionResult{status: "Checkout OK: " + resp}
		}
	}
}

// runCheckout drives the whole happy path: register, fill a cart with two
// wireless mice, apply WELCOME10 and check out.
func runCheckout(baseURL string) (string, error) {
	email := freshEmail()
	if _, err := postJSON(baseURL, "/register", map[string]any{"email": email, "password": "s3cret!"}, ""); err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	addResp, err := postJSON(baseURL, "/cart/add", map[string]any{"sku": "sku-001", "qty": 2}, "")
	if err != nil {
		return "", fmt.Errorf("cart add: %w", err)
	}
	var added struct {
		CartID string `json:"cart_id"`
	}
	if err := json.Unmarshal([]byte(addResp), &added); err != nil {
		return "", fmt.Errorf("cart add decode: %w", err)
	}
	return postJSON(baseURL, "/checkout", map[string]any{
		"cart_id": added.CartID,
		"email":   email,
		"code":    "WELCOME10",
	}, uuid.NewString())
}

func postJSON(baseURL, path string, payload any, idemKey string) (string, error) {
	data, _ := json.Marshal(payload)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+path, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	return doRequest(req)
}

func getJSON(baseURL, path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	u, err := url.JoinPath(strings.TrimRight(baseURL, "/"), path)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	return doRequest(req)
}

func doRequest(req *http.Request) (string, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}

func runBenchmark(baseURL string) string {
	duration := 5 * time.Second
	vus := 5
	var mu sync.Mutex
	var total time.Duration
	var count int
	var errors int
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < vus; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
					start := time.Now()
					_, err := runCheckout(baseURL)
					mu.Lock()
					if err != nil {
						errors++
					} else {
						count++
						total += time.Since(start)
					}
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	avg := time.Duration(0)
	if count > 0 {
		avg = total / time.Duration(count)
	}
	throughput := float64(count) / duration.Seconds()
	return fmt.Sprintf("count=%d errors=%d avg=%s throughput=%.2f checkouts/s", count, errors, avg, throughput)
}

func freshEmail() string {
	return "user-" + uuid.NewString()[:8] + "@example.com"
}

func main() {
	runCmd := flag.String("run", "", "run action: register|login|products|checkout|bench")
	flag.Parse()

	if *runCmd != "" {
		res := runActionCmd(*runCmd)().(actionResult)
		fmt.Println(res.status)
		if res.metrics != "" {
			fmt.Println(res.metrics)
		}
		return
	}

	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
