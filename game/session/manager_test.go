package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/memorycard/game/engine"
	"github.com/wricardo/mcp-training/memorycard/game/service"
)

func createTestConfig() *engine.GameConfig {
	config := engine.DefaultConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	// Keep real timers out of the way unless a test opts in.
	config.TickIntervalMs = 0
	return config
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		sess, err := manager.Create("test-session", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if sess.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", sess.ID)
		}
		if sess.Engine == nil || sess.Clock == nil {
			t.Error("Expected engine and clock to be initialized")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		sess, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(sess.ID) != idLength {
			t.Errorf("Expected %d-character session ID, got %q", idLength, sess.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid session ID", func(t *testing.T) {
		_, err := manager.Create("a/b", config)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Cols = 3 // 3x3 cannot be paired
		_, err := manager.Create("invalid-test", invalidConfig)
		if !errors.Is(err, engine.ErrConfiguration) {
			t.Errorf("Expected ErrConfiguration, got %v", err)
		}
		if _, err := manager.Get("invalid-test"); err != ErrSessionNotFound {
			t.Error("Failed create should not register a session")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()

	created, _ := manager.Create("get-test", createTestConfig())

	t.Run("get existing session", func(t *testing.T) {
		sess, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if sess != created {
			t.Error("Expected the created session")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		sess, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if sess != created {
			t.Error("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if !errors.Is(err, service.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()
	config := createTestConfig()

	first, err := manager.GetOrCreate("new-session", config)
	if err != nil {
		t.Fatalf("Failed to get or create session: %v", err)
	}

	second, err := manager.GetOrCreate("new-session", config)
	if err != nil {
		t.Fatalf("Failed to get existing session: %v", err)
	}
	if first != second {
		t.Error("Expected the existing session to be returned")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()
	config := createTestConfig()

	t.Run("delete existing session", func(t *testing.T) {
		manager.Create("delete-test", config)
		if err := manager.Delete("delete-test"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if _, err := manager.Get("delete-test"); err != ErrSessionNotFound {
			t.Error("Expected session to be deleted")
		}
	})

	t.Run("delete non-existent session", func(t *testing.T) {
		if err := manager.Delete("non-existent"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("case-insensitive delete", func(t *testing.T) {
		manager.Create("case-test", config)
		if err := manager.Delete("CASE-TEST"); err != nil {
			t.Fatalf("Failed to delete with different case: %v", err)
		}
		if _, err := manager.Get("case-test"); err != ErrSessionNotFound {
			t.Error("Expected session to be deleted regardless of case")
		}
	})

	t.Run("delete stops timers", func(t *testing.T) {
		timed := createTestConfig()
		timed.TickIntervalMs = 1000
		sess, _ := manager.Create("timed", timed)
		if sess.Clock.Pending() != 1 {
			t.Fatalf("Expected countdown to be scheduled, got %d pending", sess.Clock.Pending())
		}
		manager.Delete("timed")
		if sess.Clock.Pending() != 0 {
			t.Errorf("Expected no pending timers after delete, got %d", sess.Clock.Pending())
		}
	})
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()
	config := createTestConfig()

	var created []*service.Session
	for i := 1; i <= 3; i++ {
		sess, err := manager.Create(fmt.Sprintf("list-%d", i), config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		created = append(created, sess)
		time.Sleep(time.Millisecond)
	}

	sessions := manager.List()
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}
	for i := range created {
		if sessions[i] != created[i] {
			t.Errorf("Position %d: expected %s, got %s", i, created[i].ID, sessions[i].ID)
		}
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()
	config := createTestConfig()

	active, _ := manager.Create("active", config)
	expired, _ := manager.Create("expired", config)

	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	deleted := manager.CleanupExpiredSessions(1 * time.Hour)
	if deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}

	if _, err := manager.Get("expired"); err != ErrSessionNotFound {
		t.Error("Expected expired session to be deleted")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()

	sess, _ := manager.Create("access-test", createTestConfig())
	originalTime := sess.LastAccessedAt

	time.Sleep(10 * time.Millisecond)

	if err := manager.UpdateLastAccessed("ACCESS-TEST"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	sess.Lock()
	updated := sess.LastAccessedAt
	sess.Unlock()
	if !updated.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}

	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sess, err := manager.Create("", config)
			if err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(sess.ID); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 100 {
		t.Errorf("Expected 100 sessions, got %d", manager.Count())
	}
}

type staticConfigs struct {
	config *engine.GameConfig
}

func (c staticConfigs) LoadConfig(name string) (*engine.GameConfig, error) {
	return c.config, nil
}

func (c staticConfigs) ListConfigs() ([]*service.ConfigInfo, error) {
	return nil, nil
}

func (c staticConfigs) GetDefault() *engine.GameConfig {
	return c.config
}

func TestManager_ConcurrentRequestsOneSession(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()
	svc := service.NewGameService(manager, staticConfigs{config: createTestConfig()})

	info, err := svc.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8*50)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := svc.GetSession(context.Background(), info.ID); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			manager.CleanupExpiredSessions(time.Hour)
		}
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error: %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected the session to survive, got %d sessions", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	defer manager.StopAll()
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", config)
	session2, _ := manager.Create("iso-2", config)

	session1.Lock()
	session1.Engine.Reveal(0)
	session1.Unlock()

	if session2.Engine.Board().Cards[0].Status != engine.Hidden {
		t.Error("Session 2 should not be affected by session 1 reveals")
	}
	if session1.Engine.Board().Cards[0].Status != engine.Revealed {
		t.Error("Session 1 card should be revealed")
	}
}

func TestManager_EventHandler(t *testing.T) {
	var (
		mu     sync.Mutex
		events []engine.EventType
		ids    []string
	)
	manager := NewManager(WithEventHandler(func(sess *service.Session, ev engine.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev.Type)
		ids = append(ids, sess.ID)
	}))
	defer manager.StopAll()

	config := createTestConfig()
	config.TickIntervalMs = 5
	sess, err := manager.Create("events", config)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	sess.Lock()
	sess.Engine.Reveal(0)
	sess.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n >= 3 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()

	sawReveal, sawTick := false, false
	for i, ev := range events {
		if ids[i] != "events" {
			t.Errorf("Event %d reported for session %q", i, ids[i])
		}
		switch ev {
		case engine.EventReveal:
			sawReveal = true
		case engine.EventTick:
			sawTick = true
		}
	}
	if !sawReveal || !sawTick {
		t.Errorf("Expected reveal and tick events, got %v", events)
	}
}
