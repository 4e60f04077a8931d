package tuplego_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/tuplego"
	"github.com/hupe1980/tuplego/blobstore"
	"github.com/hupe1980/tuplego/model"
	"github.com/hupe1980/tuplego/schema"
	"github.com/hupe1980/tuplego/store"
)

func Example() {
	sch := schema.MustNew([]schema.Column{
		{Name: "id", Width: 8},
		{Name: "temperature", Width: 4},
	}, "id")

	b := store.NewBatchBuilder(sch)
	for i := 0; i < 3; i++ {
		id := make([]byte, 8)
		store.EncodeKey(id, model.Key(i))
		if err := b.AppendRow([][]byte{id, {byte(20 + i), 0, 0, 0}}); err != nil {
			log.Fatal(err)
		}
	}

	db, err := tuplego.Open(sch, [][]*store.Batch{{b.Build()}})
	if err != nil {
		log.Fatal(err)
	}

	// A filter pinning the primary key becomes an index lookup.
	res, err := db.Scan(context.Background(), store.Eq(store.Column("id"), store.Lit(1)))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("point lookup:", res.PointLookup, "rows:", res.NumRows())

	// Output:
	// point lookup: true rows: 1
}

func Example_snapshot() {
	sch := schema.MustNew([]schema.Column{
		{Name: "id", Width: 8},
	}, "id")

	b := store.NewBatchBuilder(sch)
	id := make([]byte, 8)
	store.EncodeKey(id, 42)
	if err := b.AppendRow([][]byte{id}); err != nil {
		log.Fatal(err)
	}

	db, err := tuplego.Open(sch, [][]*store.Batch{{b.Build()}})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	if err := db.Save(ctx, bs, "snapshots/example"); err != nil {
		log.Fatal(err)
	}

	loaded, err := tuplego.Load(ctx, bs, "snapshots/example")
	if err != nil {
		log.Fatal(err)
	}
	_, found := loaded.Lookup(42)
	fmt.Println("found:", found)

	// Output:
	// found: true
}
