package directory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"employee-directory/directory/application"
	"employee-directory/directory/domain"
	"employee-directory/directory/infra"
	"employee-directory/internal/apperr"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	store := infra.NewMemoryStore(
		domain.Employee{ID: "emp-123", OrgID: "org1", FirstName: "Test", LastName: "User", Department: "Engineering", Position: "Developer", ContactEmail: domain.Ptr("test@example.com"), Status: domain.Ptr("ACTIVE")},
		domain.Employee{ID: "emp-124", OrgID: "org1", FirstName: "Jane", LastName: "Smith", Department: "Marketing", Position: "Manager", Status: domain.Ptr("ACTIVE")},
		domain.Employee{ID: "emp-125", OrgID: "org1", FirstName: "John", LastName: "Doe", Department: "Engineering", Position: "Senior Developer", Status: domain.Ptr("INACTIVE")},
	)
	policy, err := domain.NewFieldPolicy(map[string][]string{"org1": {"first_name", "contact_email"}}, nil)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	engine := application.NewEngine(store, domain.NewTenantSet("org1", "org2"), policy)
	return Handler{Engine: engine}
}

func TestHandler_ReturnsProjectedList(t *testing.T) {
	h := newHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search/employees?org_id=org1&search=test", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != `[{"first_name":"Test","contact_email":"test@example.com"}]`+"\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestHandler_EmptyResultIsEmptyList(t *testing.T) {
	h := newHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search/employees?org_id=org2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty list, got %q", got)
	}
}

func TestHandler_DefaultsAndPaging(t *testing.T) {
	h := newHandler(t)

	for target, want := range map[string]int{
		"/search/employees?org_id=org1":                 3,
		"/search/employees?org_id=org1&limit=2":         2,
		"/search/employees?org_id=org1&limit=2&page=2":  1,
		"/search/employees?org_id=org1&status=inactive": 1,
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, w.Code)
		}
		var out []map[string]any
		if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
			t.Fatalf("%s: decode: %v", target, err)
		}
		if len(out) != want {
			t.Fatalf("%s: expected %d rows, got %d", target, want, len(out))
		}
	}
}

func TestHandler_Errors(t *testing.T) {
	h := newHandler(t)

	cases := []struct {
		target string
		status int
		code   string
	}{
		{"/search/employees?org_id=ghost", http.StatusBadRequest, "INVALID_TENANT"},
		{"/search/employees", http.StatusBadRequest, "INVALID_TENANT"},
		{"/search/employees?org_id=org1&page=0", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"/search/employees?org_id=org1&limit=101", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"/search/employees?org_id=org1&page=abc", http.StatusBadRequest, "INVALID_ARGUMENT"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.target, nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			var env apperr.Envelope
			if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, env.Error.Code)
			}
		})
	}
}

func TestHandler_TenantFuncOverridesQuery(t *testing.T) {
	h := newHandler(t).(Handler)
	h.Tenant = func(r *http.Request) string { return r.Header.Get("X-Org-ID") }

	r := httptest.NewRequest(http.MethodGet, "/search/employees?search=test", nil)
	r.Header.Set("X-Org-ID", " org1 ")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != `[{"first_name":"Test","contact_email":"test@example.com"}]`+"\n" {
		t.Fatalf("unexpected body %q", got)
	}
}
