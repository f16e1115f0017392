package relay

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	jww "github.com/spf13/jwalterweatherman"

	"hushwire/internal/domain"
)

// memoryStore holds published bundles and per-recipient envelope queues.
// The relay learns who receives, never who sends: envelopes arrive sealed.
type memoryStore struct {
	mu        sync.Mutex
	bundles   map[domain.Username]domain.PreKeyBundle
	mailboxes map[domain.Username][]domain.Envelope
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		bundles:   make(map[domain.Username]domain.PreKeyBundle),
		mailboxes: make(map[domain.Username][]domain.Envelope),
	}
}

// register stores or replaces a user's bundle.
func (m *memoryStore) register(b domain.PreKeyBundle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles[b.Username] = b
}

// takeBundle returns the bundle with at most one one-time prekey, popping it
// from the published pool so each is handed out once.
func (m *memoryStore) takeBundle(u domain.Username) (domain.PreKeyBundle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bundles[u]
	if !ok {
		return domain.PreKeyBundle{}, false
	}
	out := b
	if len(b.OneTimePreKeys) > 0 {
		out.OneTimePreKeys = b.OneTimePreKeys[:1]
		b.OneTimePreKeys = b.OneTimePreKeys[1:]
		m.bundles[u] = b
	}
	return out, true
}

func (m *memoryStore) enqueue(u domain.Username, env domain.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mailboxes[u] = append(m.mailboxes[u], env)
}

func (m *memoryStore) peek(u domain.Username, limit int) []domain.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.mailboxes[u]
	if limit > 0 && limit < len(q) {
		q = q[:limit]
	}
	return append([]domain.Envelope(nil), q...)
}

func (m *memoryStore) ack(u domain.Username, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.mailboxes[u]
	if count > len(q) {
		count = len(q)
	}
	m.mailboxes[u] = q[count:]
}

// NewHandler returns the relay's HTTP handler backed by in-memory state.
func NewHandler() http.Handler {
	ms := newMemoryStore()
	mux := http.NewServeMux()

	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var b domain.PreKeyBundle
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ms.register(b)
		jww.INFO.Printf("Registered bundle for %s (%d one-time prekeys)", b.Username, len(b.OneTimePreKeys))
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/bundle/", func(w http.ResponseWriter, r *http.Request) {
		username := domain.Username(strings.TrimPrefix(r.URL.Path, "/bundle/"))
		b, ok := ms.takeBundle(username)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(b)
	})

	mux.HandleFunc("/envelope/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/envelope/")

		if username, found := strings.CutSuffix(rest, "/ack"); found && r.Method == http.MethodPost {
			defer r.Body.Close()
			var body struct {
				Count int `json:"count"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			ms.ack(domain.Username(username), body.Count)
			w.WriteHeader(http.StatusOK)
			return
		}

		username := domain.Username(rest)
		switch r.Method {
		case http.MethodPost:
			defer r.Body.Close()
			var env domain.Envelope
			if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			env.To = username
			ms.enqueue(username, env)
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode(ms.peek(username, limit))
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return mux
}
