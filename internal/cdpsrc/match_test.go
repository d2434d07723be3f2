package cdpsrc

import "testing"

func TestCriteria_Compile_InvalidRegexFails(t *testing.T) {
	t.Parallel()
	c := Criteria{URLRegex: "("}
	if err := c.Compile(); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestMatches_URLSubstring(t *testing.T) {
	t.Parallel()
	c := Criteria{URL: "localhost:3000"}
	if !Matches(c, Target{URL: "http://localhost:3000/app"}, nil) {
		t.Error("expected match: url contains substring")
	}
	if Matches(c, Target{URL: "http://example.com"}, nil) {
		t.Error("expected no match: url does not contain substring")
	}
}

func TestMatches_TitleSubstring(t *testing.T) {
	t.Parallel()
	c := Criteria{Title: "Dashboard"}
	if !Matches(c, Target{Title: "My Dashboard"}, nil) {
		t.Error("expected match on title substring")
	}
}

func TestMatches_URLRegex(t *testing.T) {
	t.Parallel()
	c := Criteria{URLRegex: `^https://.*\.example\.com$`}
	if err := c.Compile(); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !Matches(c, Target{URL: "https://app.example.com"}, nil) {
		t.Error("expected regex match")
	}
	if Matches(c, Target{URL: "http://app.example.com"}, nil) {
		t.Error("expected no regex match for http scheme")
	}
}

func TestMatches_Type(t *testing.T) {
	t.Parallel()
	c := Criteria{Type: "page"}
	if !Matches(c, Target{Type: "page"}, nil) {
		t.Error("expected match on exact type")
	}
	if Matches(c, Target{Type: "worker"}, nil) {
		t.Error("expected no match on differing type")
	}
}

func TestMatches_TargetID(t *testing.T) {
	t.Parallel()
	c := Criteria{TargetID: "abc"}
	if !Matches(c, Target{ID: "abc"}, nil) {
		t.Error("expected match on exact targetId")
	}
	if Matches(c, Target{ID: "abcd"}, nil) {
		t.Error("expected no match on non-exact targetId")
	}
}

func TestMatches_Origin(t *testing.T) {
	t.Parallel()
	c := Criteria{Origin: "https://example.com:8443"}
	if !Matches(c, Target{URL: "https://example.com:8443/path?x=1"}, nil) {
		t.Error("expected origin match with explicit port")
	}
	if Matches(c, Target{URL: "https://example.com/path"}, nil) {
		t.Error("expected no match: different port (default vs explicit)")
	}
}

func TestMatches_Parent(t *testing.T) {
	t.Parallel()
	all := []Target{
		{ID: "parent1", URL: "https://parent.example.com"},
		{ID: "child1", URL: "https://child.example.com", ParentID: "parent1"},
	}
	c := Criteria{Parent: "parent.example"}
	if !Matches(c, all[1], all) {
		t.Error("expected match via parent URL substring")
	}
	if Matches(c, all[0], all) {
		t.Error("expected no match: target itself has no parent")
	}
}

func TestMatches_AllConstraintsAreANDed(t *testing.T) {
	t.Parallel()
	c := Criteria{URL: "app", Type: "page"}
	if Matches(c, Target{URL: "http://app.test", Type: "worker"}, nil) {
		t.Error("expected no match: type mismatches even though url matches")
	}
}

func TestSelect_PicksFirstByStableIDOrder(t *testing.T) {
	t.Parallel()
	all := []Target{
		{ID: "zzz", URL: "https://app.test/1"},
		{ID: "aaa", URL: "https://app.test/2"},
	}
	c := Criteria{URL: "app.test"}
	got, ok := Select(c, all)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != "aaa" {
		t.Errorf("Select() = %+v, want id aaa (stable id ordering)", got)
	}
}

func TestSelect_NoMatches(t *testing.T) {
	t.Parallel()
	_, ok := Select(Criteria{URL: "nope"}, []Target{{URL: "https://other.test"}})
	if ok {
		t.Error("expected no match")
	}
}

func TestCriteria_Describe(t *testing.T) {
	t.Parallel()
	if got := (Criteria{}).Describe(); got != "any" {
		t.Errorf("Describe() = %q, want %q", got, "any")
	}
	c := Criteria{URL: "x", Type: "page"}
	got := c.Describe()
	if got != "url~=x type=page" {
		t.Errorf("Describe() = %q, want %q", got, "url~=x type=page")
	}
}
