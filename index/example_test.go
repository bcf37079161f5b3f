package index

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

func Example_basicUsage() {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(4))

	pos := r3.Vec{X: 1000, Y: 2000, Z: 3000}
	id, key, err := idx.Insert(pos)
	if err != nil {
		fmt.Println(err)
		return
	}
	em.place(id, pos)

	ids, err := idx.Lookup(key)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(ids))
	// Output:
	// 1
}

func Example_region() {
	em := newFakeEntityManager()
	idx := New(em, &sequentialIDs{}, WithMaxDepth(4))

	near := r3.Vec{X: 100, Y: 100, Z: 100}
	far := r3.Vec{X: 1_500_000, Y: 1_500_000, Z: 1_500_000}

	idNear, _, _ := idx.Insert(near)
	em.place(idNear, near)
	idFar, _, _ := idx.Insert(far)
	em.place(idFar, far)

	found, err := idx.EntitiesInRegion(r3.Vec{}, r3.Vec{X: 1000, Y: 1000, Z: 1000})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(found))
	// Output:
	// 1
}
