package repository

import (
	"testing"
)

func TestBuildLikeConditionByDialect(t *testing.T) {
	condition, count := buildLikeConditionByDialect("sqlite", "products.name", " ", "products.slug")
	if count != 2 {
		t.Fatalf("arg count want 2 got %d", count)
	}
	want := `(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.slug) LIKE ? ESCAPE '\')`
	if condition != want {
		t.Fatalf("sqlite condition mismatch, want %s got %s", want, condition)
	}

	condition, count = buildLikeConditionByDialect("postgres", "order_no")
	if count != 1 || condition != `(order_no ILIKE ? ESCAPE '\')` {
		t.Fatalf("postgres condition mismatch: %s (%d)", condition, count)
	}

	if condition, count = buildLikeCondition(nil); condition != "" || count != 0 {
		t.Fatalf("empty columns should produce no condition, got %q", condition)
	}
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	if got := containsPattern(" Rose_Gold 100% "); got != `%rose\_gold 100\%%` {
		t.Fatalf("unexpected pattern: %s", got)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
