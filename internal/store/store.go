package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poppitai/poppit/internal/models"
)

// DefaultStorageKey is the kv key holding the serialized session collection.
const DefaultStorageKey = "allChats"

// Store owns the session collection and the active-session pointer. All
// mutation goes through its methods; every mutating operation ends with a
// full-collection write. Not safe for concurrent use; the client runs a
// single logical thread of control.
type Store struct {
	kv         KV
	storageKey string
	secret     string
	logger     *slog.Logger

	sessions []models.ChatSession

	activeID       string
	activeMessages []models.Message
	activeCreated  time.Time
}

// New opens a store over the given backend and loads the persisted
// collection. A missing or undecodable persisted form yields an empty
// collection, never an error.
func New(kv KV, secret string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:         kv,
		storageKey: DefaultStorageKey,
		secret:     secret,
		logger:     logger,
	}
	s.sessions = s.loadAll()
	return s
}

// loadAll reads and decodes the persisted collection, failing open to empty.
func (s *Store) loadAll() []models.ChatSession {
	encoded, ok, err := s.kv.Get(s.storageKey)
	if err != nil {
		s.logger.Warn("session storage read failed, starting empty", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var sessions []models.ChatSession
	if err := decode(encoded, s.secret, &sessions); err != nil {
		s.logger.Warn("session storage undecodable, starting empty", "error", err)
		return nil
	}
	return sessions
}

// persist writes the whole collection back to the backend.
func (s *Store) persist() error {
	encoded, err := encode(s.sessions, s.secret)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := s.kv.Set(s.storageKey, encoded); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	return nil
}

// indexOf returns the collection position of id, or -1.
func (s *Store) indexOf(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// flushActive applies the save-or-discard rule to the outgoing active
// session: persist it if it has messages, otherwise make sure no empty
// record for it lingers in the collection.
func (s *Store) flushActive() error {
	if s.activeID == "" {
		return nil
	}
	if len(s.activeMessages) > 0 {
		s.upsertActive()
		return s.persist()
	}
	if i := s.indexOf(s.activeID); i >= 0 {
		s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	}
	return s.persist()
}

// upsertActive writes the active session's state into the collection: a new
// record goes to the front, an existing one is updated in place. Empty
// sessions are never written.
func (s *Store) upsertActive() {
	if len(s.activeMessages) == 0 {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	msgs := make([]models.Message, len(s.activeMessages))
	copy(msgs, s.activeMessages)

	if i := s.indexOf(s.activeID); i >= 0 {
		s.sessions[i].Messages = msgs
		s.sessions[i].Title = models.DeriveTitle(msgs)
		s.sessions[i].UpdatedAt = now
		return
	}
	s.sessions = append([]models.ChatSession{{
		ID:        s.activeID,
		Title:     models.DeriveTitle(msgs),
		Messages:  msgs,
		CreatedAt: s.activeCreated.Format(time.RFC3339),
		UpdatedAt: now,
	}}, s.sessions...)
}

// CreateSession flushes the outgoing active session, then starts a fresh one
// with zero messages. The new session is not inserted into the collection
// until its first message arrives.
func (s *Store) CreateSession() (string, error) {
	if err := s.flushActive(); err != nil {
		return "", err
	}
	s.activeID = uuid.NewString()
	s.activeMessages = nil
	s.activeCreated = time.Now().UTC()
	return s.activeID, nil
}

// AppendMessage appends to the active session and persists. The first
// message inserts the session record at the front of the collection. With no
// active session this is a no-op.
func (s *Store) AppendMessage(msg models.Message) error {
	if s.activeID == "" {
		s.logger.Debug("append with no active session ignored")
		return nil
	}
	s.activeMessages = append(s.activeMessages, msg)
	s.upsertActive()
	return s.persist()
}

// LoadSession flushes the outgoing active session, then makes id active and
// restores its messages and creation time.
func (s *Store) LoadSession(id string) error {
	if err := s.flushActive(); err != nil {
		return err
	}
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess := s.sessions[i]
	s.activeID = sess.ID
	s.activeMessages = make([]models.Message, len(sess.Messages))
	copy(s.activeMessages, sess.Messages)
	s.activeCreated = parseTime(sess.CreatedAt)
	return nil
}

// DeleteSession removes id from the collection. If it was active, the most
// recent remaining session becomes active, or a fresh one is created.
func (s *Store) DeleteSession(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)

	if s.activeID == id {
		// The outgoing state belongs to the deleted session; drop it so the
		// switch below cannot write it back.
		s.resetActive()
		if len(s.sessions) > 0 {
			if err := s.LoadSession(s.sessions[0].ID); err != nil {
				return err
			}
		} else if _, err := s.CreateSession(); err != nil {
			return err
		}
	}
	return s.persist()
}

// ClearAll removes every session, or every non-pinned session when
// keepPinned is true. A removed active session is replaced by the first
// survivor or a fresh session.
func (s *Store) ClearAll(keepPinned bool) error {
	var kept []models.ChatSession
	if keepPinned {
		for _, sess := range s.sessions {
			if sess.Pinned {
				kept = append(kept, sess)
			}
		}
	}
	s.sessions = kept

	if s.activeID != "" && s.indexOf(s.activeID) < 0 {
		s.resetActive()
		if len(s.sessions) > 0 {
			if err := s.LoadSession(s.sessions[0].ID); err != nil {
				return err
			}
		} else if _, err := s.CreateSession(); err != nil {
			return err
		}
	}
	return s.persist()
}

// TogglePin flips the pinned flag of id and persists.
func (s *Store) TogglePin(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.sessions[i].Pinned = !s.sessions[i].Pinned
	return s.persist()
}

// Reload persists the current state, then re-reads the whole collection from
// the backend and replaces in-memory state, picking up external mutation of
// the persisted layer.
func (s *Store) Reload() error {
	if err := s.flushActive(); err != nil {
		return err
	}
	s.sessions = s.loadAll()
	if i := s.indexOf(s.activeID); i >= 0 {
		sess := s.sessions[i]
		s.activeMessages = make([]models.Message, len(sess.Messages))
		copy(s.activeMessages, sess.Messages)
		s.activeCreated = parseTime(sess.CreatedAt)
	} else {
		s.activeMessages = nil
	}
	return nil
}

func (s *Store) resetActive() {
	s.activeID = ""
	s.activeMessages = nil
}

// Sessions returns a deep copy of the collection, most recent first.
func (s *Store) Sessions() []models.ChatSession {
	out := make([]models.ChatSession, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// ActiveID returns the id of the session receiving appended messages, or "".
func (s *Store) ActiveID() string { return s.activeID }

// ActiveMessages returns a copy of the active session's message sequence.
func (s *Store) ActiveMessages() []models.Message {
	out := make([]models.Message, len(s.activeMessages))
	copy(out, s.activeMessages)
	return out
}

// Close releases the underlying backend.
func (s *Store) Close() error { return s.kv.Close() }

func parseTime(iso string) time.Time {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
