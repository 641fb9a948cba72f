package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"employee-directory/internal/apperr"
)

func sample() Employee {
	return Employee{
		ID:           "emp-123",
		OrgID:        "org1",
		FirstName:    "Test",
		LastName:     "User",
		ContactEmail: Ptr("test@example.com"),
		Department:   "Engineering",
		Position:     "Developer",
		Location:     Ptr("Remote"),
		Status:       Ptr("ACTIVE"),
	}
}

func TestParseFields(t *testing.T) {
	got, err := ParseFields([]string{"Last_Name", " first_name ", "last_name"})
	require.NoError(t, err)
	require.Equal(t, []Field{FieldLastName, FieldFirstName}, got)

	_, err = ParseFields([]string{"salary"})
	require.Error(t, err)

	_, err = ParseField("id")
	require.Error(t, err, "id is never projectable")
}

func TestProjectOnlyAllowedFields(t *testing.T) {
	p := Project(sample(), []Field{FieldFirstName, FieldDepartment, FieldContactPhone})

	want := map[string]any{
		"first_name":    "Test",
		"department":    "Engineering",
		"contact_phone": nil,
	}
	if diff := cmp.Diff(want, p.Map()); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}

	_, ok := p.Get(FieldLastName)
	require.False(t, ok)
}

func TestProjectionMarshalJSONKeepsPolicyOrder(t *testing.T) {
	p := Project(sample(), []Field{FieldStatus, FieldFirstName, FieldContactPhone})

	b, err := json.Marshal(p)
	require.NoError(t, err)
	require.Equal(t, `{"status":"ACTIVE","first_name":"Test","contact_phone":null}`, string(b))

	b, err = json.Marshal([]Projection{Project(sample(), nil)})
	require.NoError(t, err)
	require.Equal(t, `[{}]`, string(b))
}

func TestFieldPolicyResolve(t *testing.T) {
	p, err := NewFieldPolicy(map[string][]string{
		"org1":  {"first_name", "status"},
		"empty": {},
	}, nil)
	require.NoError(t, err)

	fields, configured := p.Resolve("org1")
	require.True(t, configured)
	require.Equal(t, []Field{FieldFirstName, FieldStatus}, fields)

	fields, configured = p.Resolve("org2")
	require.False(t, configured)
	require.Equal(t, DefaultFallback(), fields)

	_, configured = p.Resolve("empty")
	require.False(t, configured, "empty allow-list falls back")

	require.Equal(t, []string{"org1"}, p.Tenants())
}

func TestFieldPolicyRejectsUnknownField(t *testing.T) {
	_, err := NewFieldPolicy(map[string][]string{"org1": {"ssn"}}, nil)
	require.Error(t, err)

	_, err = NewFieldPolicy(nil, []string{"ssn"})
	require.Error(t, err)
}

func TestTenantSetValidate(t *testing.T) {
	s := NewTenantSet("org1", " org2 ", "")
	require.Equal(t, 2, s.Len())
	require.NoError(t, s.Validate("org2"))

	err := s.Validate("ghost")
	require.True(t, apperr.Is(err, apperr.KindInvalidTenant))

	err = s.Validate("")
	require.True(t, apperr.Is(err, apperr.KindInvalidTenant))
}

func TestSearchRequestValidate(t *testing.T) {
	ok := SearchRequest{OrgID: "org1", Page: 1, Limit: 100}
	require.NoError(t, ok.Validate())

	cases := map[string]SearchRequest{
		"page zero":   {OrgID: "org1", Page: 0, Limit: 10},
		"limit zero":  {OrgID: "org1", Page: 1, Limit: 0},
		"limit 101":   {OrgID: "org1", Page: 1, Limit: 101},
		"long search": {OrgID: "org1", Page: 1, Limit: 10, Search: strings.Repeat("a", 101)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			require.True(t, apperr.Is(req.Validate(), apperr.KindInvalidArgument))
		})
	}

	require.Equal(t, 20, SearchRequest{Page: 3, Limit: 10}.Offset())
}

func TestFilterMatch(t *testing.T) {
	e := sample()

	base := SearchRequest{OrgID: "org1", Page: 1, Limit: 10}
	require.True(t, NewFilter(base, false).Match(e))

	other := base
	other.OrgID = "org2"
	require.False(t, NewFilter(other, false).Match(e))

	byName := base
	byName.Search = "tes"
	require.True(t, NewFilter(byName, false).Match(e))

	byStatus := base
	byStatus.Status = "active"
	require.True(t, NewFilter(byStatus, false).Match(e))
	byStatus.Status = "TERMINATED"
	require.False(t, NewFilter(byStatus, false).Match(e))

	byLocation := base
	byLocation.Search = "remote"
	require.False(t, NewFilter(byLocation, false).Match(e))
	require.True(t, NewFilter(byLocation, true).Match(e))

	literal := base
	literal.Search = "%"
	require.False(t, NewFilter(literal, false).Match(e), "wildcards are literal")
}
