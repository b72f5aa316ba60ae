package content

import "testing"

func TestPruneKeepsOnlyReferenced(t *testing.T) {
	images := []ImageRef{
		{ID: 1, URL: "/uploads/1.png"},
		{ID: 3, URL: "/uploads/3.png"},
		{ID: 7, URL: "/uploads/7.png"},
		{ID: 9, URL: "/uploads/9.png"},
	}
	got := Prune("a [IMG:3] b [IMG:7] c", images)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != 3 || got[1].ID != 7 {
		t.Fatalf("unexpected ids: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestPruneEmptyText(t *testing.T) {
	got := Prune("tanpa gambar", []ImageRef{{ID: 1}})
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
}

func TestPruneRepeatedToken(t *testing.T) {
	got := Prune("[IMG:5] dan lagi [IMG:5]", []ImageRef{{ID: 5}})
	if len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestReferencedIgnoresMalformedTokens(t *testing.T) {
	ids := Referenced("[IMG:] [IMG: 4] [img:5] [IMG:6]")
	if len(ids) != 1 {
		t.Fatalf("expected one id, got %v", ids)
	}
	if _, ok := ids[6]; !ok {
		t.Fatalf("expected id 6 in %v", ids)
	}
}
