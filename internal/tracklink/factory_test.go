package tracklink

import (
	"testing"
	"time"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/affiliate"
)

func testFactory() *Factory {
	return NewFactory([]byte("test-signing-key"), "https://api.fitbites.app", 24*time.Hour)
}

func TestLinkIDDeterministic(t *testing.T) {
	f := testFactory()

	id1 := f.LinkID("recipe-1", "chicken breast", "instacart")
	id2 := f.LinkID("recipe-1", "chicken breast", "instacart")
	if id1 != id2 {
		t.Errorf("link id not stable: %q vs %q", id1, id2)
	}
	if len(id1) != 12 {
		t.Errorf("link id length = %d, want 12", len(id1))
	}

	// Any input change must change the id.
	if f.LinkID("recipe-2", "chicken breast", "instacart") == id1 {
		t.Error("different recipe produced same link id")
	}
	if f.LinkID("recipe-1", "chicken thigh", "instacart") == id1 {
		t.Error("different ingredient produced same link id")
	}
	if f.LinkID("recipe-1", "chicken breast", "amazon") == id1 {
		t.Error("different provider produced same link id")
	}
}

func TestLinkIDDependsOnSecret(t *testing.T) {
	a := NewFactory([]byte("key-a"), "", 0)
	b := NewFactory([]byte("key-b"), "", 0)
	if a.LinkID("r", "i", "p") == b.LinkID("r", "i", "p") {
		t.Error("different secrets produced same link id")
	}
}

func TestCreateIdempotent(t *testing.T) {
	f := testFactory()
	l1 := f.Create("recipe-1", "chicken breast", "instacart", "https://example.com", 0.10)
	l2 := f.Create("recipe-1", "chicken breast", "instacart", "https://example.com", 0.10)
	if l1.LinkID != l2.LinkID {
		t.Errorf("repeated create changed link id: %q vs %q", l1.LinkID, l2.LinkID)
	}
	if l1.TTL != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h", l1.TTL)
	}
}

func TestCreateForRecipe(t *testing.T) {
	f := testFactory()
	enriched := affiliate.EnrichIngredients([]string{"1 scoop protein powder", "2 cups spinach"})

	links := f.CreateForRecipe("recipe-9", enriched)
	if len(links) == 0 {
		t.Fatal("no tracked links created")
	}
	for id, link := range links {
		if id != link.LinkID {
			t.Errorf("map key %q != link id %q", id, link.LinkID)
		}
		if link.RecipeID != "recipe-9" {
			t.Errorf("recipe id = %q", link.RecipeID)
		}
		if link.DestinationURL == "" {
			t.Error("empty destination URL")
		}
	}
}
