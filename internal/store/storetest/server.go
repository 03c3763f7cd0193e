// Package storetest runs an in-memory stand-in for the hosted Supabase
// project: enough of the PostgREST and GoTrue surfaces for the service and
// handler tests to exercise real HTTP round trips.
package storetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"stackit/internal/config"
)

const JWTSecret = "storetest-jwt-secret"

type account struct {
	ID       string
	Email    string
	Password string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tables   map[string][]map[string]any
	accounts map[string]*account // by email
}

func New() *Server {
	s := &Server{
		tables:   make(map[string][]map[string]any),
		accounts: make(map[string]*account),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/rpc/adjust_answer_count", s.handleAdjustAnswerCount)
	mux.HandleFunc("/rest/v1/", s.handleRest)
	mux.HandleFunc("/auth/v1/signup", s.handleSignUp)
	mux.HandleFunc("/auth/v1/token", s.handleToken)
	mux.HandleFunc("/auth/v1/admin/users", s.handleAdminCreate)
	mux.HandleFunc("/auth/v1/user", s.handleUser)
	mux.HandleFunc("/auth/v1/recover", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.Server = httptest.NewServer(mux)
	return s
}

// Config points a client at this fake project.
func (s *Server) Config() config.SupabaseConfig {
	return config.SupabaseConfig{
		URL:            s.URL,
		AnonKey:        "storetest-anon",
		ServiceRoleKey: "storetest-service",
		JWTSecret:      JWTSecret,
	}
}

// Token mints an access token the way GoTrue would.
func Token(userID, email string) string {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	return token
}

// Rows returns a snapshot of a table's documents.
func (s *Server) Rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.tables[table]...)
}

// AddAccount registers a sign-in account and returns its generated id.
func (s *Server) AddAccount(email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := &account{ID: uuid.NewString(), Email: email, Password: password}
	s.accounts[email] = acct
	return acct.ID
}

// ---------------------------------------------------------------------------
// PostgREST subset

func (s *Server) handleRest(w http.ResponseWriter, r *http.Request) {
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	if table == "" || strings.Contains(table, "/") {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		s.handleSelect(w, r, table)
	case http.MethodPost:
		s.handleInsert(w, r, table)
	case http.MethodPatch:
		s.handlePatch(w, r, table)
	case http.MethodDelete:
		s.handleDelete(w, r, table)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, table string) {
	rows := s.match(table, r)
	if rows == nil {
		rows = []map[string]any{}
	}

	if order := r.URL.Query().Get("order"); order != "" {
		parts := strings.SplitN(order, ".", 2)
		column, asc := parts[0], len(parts) > 1 && parts[1] == "asc"
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := fmt.Sprint(rows[i][column]), fmt.Sprint(rows[j][column])
			if asc {
				return a < b
			}
			return a > b
		})
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n < len(rows) {
			rows = rows[:n]
		}
	}

	if r.Header.Get("Accept") == "application/vnd.pgrst.object+json" {
		if len(rows) != 1 {
			w.WriteHeader(http.StatusNotAcceptable)
			w.Write([]byte(`{"message":"JSON object requested, multiple (or no) rows returned"}`))
			return
		}
		writeJSON(w, http.StatusOK, rows[0])
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request, table string) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.tables[table] = append(s.tables[table], doc)

	if strings.Contains(r.Header.Get("Prefer"), "return=representation") {
		writeJSON(w, http.StatusCreated, []map[string]any{doc})
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request, table string) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	var patched []map[string]any
	for _, row := range s.tables[table] {
		if matchesFilters(row, r) {
			for k, v := range patch {
				row[k] = v
			}
			patched = append(patched, row)
		}
	}
	if patched == nil {
		patched = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, patched)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, table string) {
	var kept, removed []map[string]any
	for _, row := range s.tables[table] {
		if matchesFilters(row, r) {
			removed = append(removed, row)
		} else {
			kept = append(kept, row)
		}
	}
	s.tables[table] = kept
	if removed == nil {
		removed = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, removed)
}

func (s *Server) handleAdjustAnswerCount(w http.ResponseWriter, r *http.Request) {
	var params struct {
		QID   string `json:"qid"`
		Delta int    `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.tables["questions"] {
		if fmt.Sprint(row["id"]) == params.QID {
			count := int(toFloat(row["answer_count"])) + params.Delta
			if count < 0 {
				count = 0
			}
			row["answer_count"] = count
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// match returns copies of rows passing the request's filters.
func (s *Server) match(table string, r *http.Request) []map[string]any {
	var rows []map[string]any
	for _, row := range s.tables[table] {
		if matchesFilters(row, r) {
			rows = append(rows, row)
		}
	}
	return rows
}

func matchesFilters(row map[string]any, r *http.Request) bool {
	for column, values := range r.URL.Query() {
		switch column {
		case "select", "order", "limit", "offset":
			continue
		}
		for _, value := range values {
			switch {
			case strings.HasPrefix(value, "eq."):
				if fmt.Sprint(row[column]) != strings.TrimPrefix(value, "eq.") {
					return false
				}
			case strings.HasPrefix(value, "cs."):
				needles := strings.Trim(strings.TrimPrefix(value, "cs."), "{}")
				for _, needle := range strings.Split(needles, ",") {
					if !arrayContains(row[column], needle) {
						return false
					}
				}
			}
		}
	}
	return true
}

func arrayContains(value any, needle string) bool {
	items, ok := value.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if fmt.Sprint(item) == needle {
			return true
		}
	}
	return false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// ---------------------------------------------------------------------------
// GoTrue subset

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"msg": "User already registered"})
		return
	}
	acct := &account{ID: uuid.NewString(), Email: req.Email, Password: req.Password}
	s.accounts[req.Email] = acct
	writeJSON(w, http.StatusOK, map[string]string{"id": acct.ID, "email": acct.Email})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("grant_type") != "password" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "unsupported grant type"})
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
		return
	}

	s.mu.Lock()
	acct := s.accounts[req.Email]
	s.mu.Unlock()
	if acct == nil || acct.Password != req.Password {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Invalid login credentials"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  Token(acct.ID, acct.Email),
		"refresh_token": "storetest-refresh",
		"expires_in":    3600,
		"user":          map[string]string{"id": acct.ID, "email": acct.Email},
	})
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
		return
	}
	s.mu.Lock()
	acct := &account{ID: uuid.NewString(), Email: req.Email, Password: req.Password}
	s.accounts[req.Email] = acct
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"id": acct.ID, "email": acct.Email})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(JWTSecret), nil
	})
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid token"})
		return
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	writeJSON(w, http.StatusOK, map[string]string{"id": sub, "email": email})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
