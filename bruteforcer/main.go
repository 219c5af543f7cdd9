package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type Card struct {
	ID        int    `json:"id"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Status    string `json:"status"`
	PairValue string `json:"pair_value,omitempty"`
}

type GameState struct {
	Rows         int    `json:"rows"`
	Cols         int    `json:"cols"`
	Cards        []Card `json:"cards"`
	MatchesFound int    `json:"matches_found"`
	TotalPairs   int    `json:"total_pairs"`
	AttemptsLeft int    `json:"attempts_left"`
	TimeLeft     int    `json:"time_left"`
	Phase        string `json:"phase"`
	Selection    []int  `json:"selection"`
	HidePending  bool   `json:"hide_pending"`
	Message      string `json:"message"`
}

func (s *GameState) Over() bool {
	return s.Phase == "won" || s.Phase == "lost"
}

type SessionResponse struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

type RevealResponse struct {
	Changed   bool       `json:"changed"`
	Matched   bool       `json:"matched"`
	Outcome   string     `json:"outcome"`
	GameState *GameState `json:"game_state"`
	Message   string     `json:"message"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(configID string) (*GameState, error) {
	var reqBody []byte
	var err error

	if configID != "" {
		reqBody, err = json.Marshal(map[string]string{"config_id": configID})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState() (*GameState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/state", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get state failed: %s", resp.Status)
	}

	var state GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return &state, nil
}

func (c *Client) Reveal(cardID int) (*RevealResponse, error) {
	body, err := json.Marshal(map[string]int{"card_id": cardID})
	if err != nil {
		return nil, fmt.Errorf("marshal reveal: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/reveal", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("reveal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reveal failed: %s - %s", resp.Status, string(data))
	}

	var revealResp RevealResponse
	if err := json.NewDecoder(resp.Body).Decode(&revealResp); err != nil {
		return nil, fmt.Errorf("parse reveal response: %w", err)
	}

	return &revealResp, nil
}

type ResetResponse struct {
	Message string     `json:"message"`
	State   *GameState `json:"state"`
}

func (c *Client) Reset() (*GameState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/reset", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	defer resp.Body.Close()

	var resetResp ResetResponse
	if err := json.NewDecoder(resp.Body).Decode(&resetResp); err != nil {
		return nil, fmt.Errorf("parse reset response: %w", err)
	}

	return resetResp.State, nil
}

// waitForHide polls until a mismatched pair has flipped back
func (c *Client) waitForHide(state *GameState, poll time.Duration) (*GameState, error) {
	for state.HidePending && !state.Over() {
		time.Sleep(poll)
		next, err := c.GetState()
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Game configuration ID (classic, easy, large)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	maxRounds := flag.Int("max-rounds", 20, "Maximum rounds before giving up")
	verbose := flag.Bool("v", false, "Verbose output")
	pollMs := flag.Int("poll", 100, "Polling interval while a mismatch is shown, in milliseconds")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	var state *GameState
	var err error

	sessionFile := ".session"
	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("Resuming session: %s", client.sessionID)
		if state, err = client.GetState(); err != nil {
			log.Printf("Failed to resume session (may be expired): %v", err)
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		state, err = client.CreateSession(*configID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("Session created: %s", client.sessionID)

		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}
	log.Printf("Grid: %dx%d, Pairs: %d, Attempts: %d, Time: %ds",
		state.Rows, state.Cols, state.TotalPairs, state.AttemptsLeft, state.TimeLeft)

	strategy := NewMemoryStrategy()
	poll := time.Duration(*pollMs) * time.Millisecond

	for round := 1; round <= *maxRounds; round++ {
		if state, err = client.Reset(); err != nil {
			log.Fatalf("Failed to reset game: %v", err)
		}
		strategy.Reset()

		log.Printf("=== Round %d/%d ===", round, *maxRounds)

		reveals := 0
		for !state.Over() {
			if state, err = client.waitForHide(state, poll); err != nil {
				log.Printf("Polling failed: %v", err)
				break
			}
			if state.Over() {
				break
			}

			strategy.Observe(state)
			cardID := strategy.NextReveal(state)
			if cardID < 0 {
				log.Printf("No card left to reveal")
				break
			}

			result, err := client.Reveal(cardID)
			if err != nil {
				log.Printf("Reveal failed: %v", err)
				break
			}
			reveals++
			state = result.GameState
			strategy.Observe(state)

			if *verbose {
				log.Printf("Card %d: %s (pairs %d/%d, attempts %d, time %ds)",
					cardID+1, result.Message, state.MatchesFound, state.TotalPairs, state.AttemptsLeft, state.TimeLeft)
			}
		}

		log.Printf("Round %d: Reveals=%d, Pairs=%d/%d, Attempts left=%d, Time left=%ds",
			round, reveals, state.MatchesFound, state.TotalPairs, state.AttemptsLeft, state.TimeLeft)

		if state.Phase == "won" {
			log.Printf("VICTORY! Round %d won with %d reveals", round, reveals)
			log.Printf("Session: %s", client.sessionID)
			os.Exit(0)
		}
	}

	log.Printf("Failed to win after %d rounds", *maxRounds)
	log.Printf("Session: %s", client.sessionID)
	os.Exit(1)
}
