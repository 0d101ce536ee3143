// Package session keeps per-visitor state in fiber's session store: the
// signed-in user and the "ask the AI" chat history.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/models"
)

const (
	keyHistory  = "chat_history"
	keyUserID   = "user_id"
	keyUsername = "username"
)

// Manager reads and writes session values for one request at a time.
type Manager struct {
	store      *session.Store
	historyMax int
}

// NewManager wraps store. historyMax caps the chat history; 0 keeps every turn.
func NewManager(store *session.Store, historyMax int) *Manager {
	return &Manager{store: store, historyMax: historyMax}
}

// List returns the chat turns of the current session in insertion order.
func (m *Manager) List(c *fiber.Ctx) ([]models.ChatTurn, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeHistory(sess), nil
}

// Append adds turn to the end of the history, dropping the oldest turns once
// the cap is reached.
func (m *Manager) Append(c *fiber.Ctx, turn models.ChatTurn) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	turns := append(decodeHistory(sess), turn)
	if m.historyMax > 0 && len(turns) > m.historyMax {
		turns = turns[len(turns)-m.historyMax:]
	}

	raw, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	sess.Set(keyHistory, string(raw))
	return sess.Save()
}

// SetUser marks the session as signed in. The session id is regenerated so a
// pre-login id cannot be reused.
func (m *Manager) SetUser(c *fiber.Ctx, u models.User) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(keyUserID, u.ID)
	sess.Set(keyUsername, u.Username)
	return sess.Save()
}

// CurrentUser returns the signed-in user, if any.
func (m *Manager) CurrentUser(c *fiber.Ctx) (models.User, bool) {
	sess, err := m.store.Get(c)
	if err != nil {
		logger.Log.Warnf("[Session] load failed: %v", err)
		return models.User{}, false
	}
	id, _ := sess.Get(keyUserID).(string)
	if id == "" {
		return models.User{}, false
	}
	name, _ := sess.Get(keyUsername).(string)
	return models.User{ID: id, Username: name}, true
}

// Clear destroys the session, signing the user out and dropping the history.
func (m *Manager) Clear(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return sess.Destroy()
}

func decodeHistory(sess *session.Session) []models.ChatTurn {
	raw, _ := sess.Get(keyHistory).(string)
	if raw == "" {
		return nil
	}
	var turns []models.ChatTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		logger.Log.Warnf("[Session] discarding unreadable chat history: %v", err)
		return nil
	}
	return turns
}
