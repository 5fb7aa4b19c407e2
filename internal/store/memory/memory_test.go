package memory

import (
	"context"
	"testing"

	"github.com/schemat-io/core/internal/catalog"
	"github.com/schemat-io/core/internal/store"
)

func TestInsertSelectUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := New(1)

	rec, err := s.Insert(ctx, catalog.New(catalog.Entry{Key: "x", Value: catalog.PlainValue(1.0)}))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.ID != 1 {
		t.Fatalf("first inserted id = %d; want 1", rec.ID)
	}

	got, err := s.Select(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !got.Data.Equal(rec.Data) {
		t.Fatalf("selected data mismatch")
	}

	updated, err := s.Update(ctx, rec.ID, catalog.Update([]catalog.PathStep{catalog.Index(0)}, catalog.Entry{Value: catalog.PlainValue(2.0)}))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	v, _ := updated.Data.First("x")
	if v.Plain != 2.0 {
		t.Fatalf("updated x = %v; want 2", v.Plain)
	}

	ok, err := s.Delete(ctx, rec.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if _, err := s.Select(ctx, rec.ID); err == nil {
		t.Fatal("expected not-found after delete")
	}
}

func TestInsertManyCrossReferences(t *testing.T) {
	ctx := context.Background()
	s := New(1)
	a := catalog.New(catalog.Entry{Key: "name", Value: catalog.PlainValue("a")})
	b := catalog.New(catalog.Entry{Key: "name", Value: catalog.PlainValue("b")})

	recs, err := s.InsertMany(ctx, a, b)
	if err != nil {
		t.Fatalf("InsertMany: %v", err)
	}
	if len(recs) != 2 || recs[0].ID == recs[1].ID {
		t.Fatalf("expected two distinct ids, got %+v", recs)
	}
	// now that ids are known, link b -> a and persist via Update.
	if _, err := s.Update(ctx, recs[1].ID, catalog.Insert(nil, 1, catalog.Entry{Key: "ref", Value: catalog.RefValue(recs[0].ID)})); err != nil {
		t.Fatalf("Update linking: %v", err)
	}
	linked, err := s.Select(ctx, recs[1].ID)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	ref, ok := linked.Data.First("ref")
	if !ok || !ref.IsRef() || ref.Ref.ID != recs[0].ID {
		t.Fatalf("cross-reference did not resolve: %+v", ref)
	}
}

func TestScanByCategory(t *testing.T) {
	ctx := context.Background()
	s := New(1)
	withCat, _ := s.Insert(ctx, catalog.New(catalog.Entry{Key: "category", Value: catalog.RefValue(99)}))
	_, _ = s.Insert(ctx, catalog.New(catalog.Entry{Key: "category", Value: catalog.RefValue(100)}))

	it, err := s.Scan(ctx, 99)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var got []*store.Record
	for {
		ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, it.Record())
	}
	if len(got) != 1 || got[0].ID != withCat.ID {
		t.Fatalf("Scan(99) = %+v; want just %d", got, withCat.ID)
	}
}
