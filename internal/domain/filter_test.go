package domain

import "testing"

func TestFiltersMerge(t *testing.T) {
	base := Filters{
		"status":     Eq("active"),
		"created_at": Gte("2025-01-01"),
	}
	extra := Filters{
		"created_at": Lte("2025-12-31"),
		"category":   Eq("bikini"),
	}

	merged := base.Merge(extra)

	if len(merged) != 3 {
		t.Fatalf("merged columns = %d; want 3", len(merged))
	}
	if got := merged["created_at"]; len(got) != 2 {
		t.Fatalf("created_at clauses = %d; want 2 (range from both sides)", len(got))
	} else if got[0].Op != FilterGte || got[1].Op != FilterLte {
		t.Errorf("created_at ops = %v, %v; want gte then lte", got[0].Op, got[1].Op)
	}
	if got := merged["status"]; len(got) != 1 || got[0].Value != "active" {
		t.Errorf("status = %v; want single eq active", got)
	}
}

func TestFiltersMerge_DoesNotAliasReceiver(t *testing.T) {
	base := Filters{"status": Eq("active")}
	merged := base.Merge(Filters{"status": Eq("draft")})

	if len(base["status"]) != 1 {
		t.Errorf("receiver grew to %d clauses; Merge must copy", len(base["status"]))
	}
	if len(merged["status"]) != 2 {
		t.Errorf("merged status clauses = %d; want 2", len(merged["status"]))
	}
}

func TestFiltersMerge_NilSides(t *testing.T) {
	var empty Filters
	merged := empty.Merge(Filters{"year": Eq(2025)})
	if len(merged) != 1 {
		t.Errorf("nil receiver merge = %d columns; want 1", len(merged))
	}

	merged = Filters{"year": Eq(2025)}.Merge(nil)
	if len(merged) != 1 {
		t.Errorf("nil extra merge = %d columns; want 1", len(merged))
	}

	merged = empty.Merge(nil)
	if merged == nil || len(merged) != 0 {
		t.Errorf("nil-nil merge = %v; want usable empty map", merged)
	}
}

func TestBetween(t *testing.T) {
	clauses := Between(10, 20)
	if len(clauses) != 2 {
		t.Fatalf("clauses = %d; want 2", len(clauses))
	}
	if clauses[0].Op != FilterGte || clauses[0].Value != 10 {
		t.Errorf("first clause = %+v; want gte 10", clauses[0])
	}
	if clauses[1].Op != FilterLte || clauses[1].Value != 20 {
		t.Errorf("second clause = %+v; want lte 20", clauses[1])
	}
}

func TestEqNil_MatchesNull(t *testing.T) {
	clauses := Eq(nil)
	if len(clauses) != 1 || clauses[0].Op != FilterEq || clauses[0].Value != nil {
		t.Errorf("Eq(nil) = %+v; want single eq clause with nil value", clauses)
	}
}
