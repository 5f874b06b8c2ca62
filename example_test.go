package batbit_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/hupe1980/batbit"
)

// Example_batCave demonstrates sparse membership over a huge domain.
func Example_batCave() {
	cave, err := batbit.NewBatCave()
	if err != nil {
		log.Fatal(err)
	}

	if err := cave.DeployBatch([]uint64{0, 1_000_000_000}); err != nil {
		log.Fatal(err)
	}

	fmt.Println(cave.Signal(1_000_000_000), cave.Signal(42))
	fmt.Println("chunks:", cave.Chunks())
	// Output:
	// true false
	// chunks: 2
}

// Example_batMap demonstrates batch puts with a duplicate key.
func Example_batMap() {
	m, err := batbit.NewBatMap()
	if err != nil {
		log.Fatal(err)
	}

	if err := m.PutBatch([]uint64{7, 9, 7}, []float64{1.5, 2.5, 3.5}); err != nil {
		log.Fatal(err)
	}

	v, _ := m.Get(7)
	_, err = m.Get(8)
	fmt.Println(v, errors.Is(err, batbit.ErrNotFound))
	// Output: 3.5 true
}

// Example_batStore demonstrates typed columns.
func Example_batStore() {
	store, err := batbit.NewBatStore()
	if err != nil {
		log.Fatal(err)
	}
	_ = store.AddStrCol("username")
	_ = store.AddIntCol("age")

	uid := store.NewRow()
	_ = store.SetStr("username", uid, "User_0")
	_ = store.SetInt("age", uid, 20)

	name, _ := store.GetStr("username", uid)
	err = store.SetInt("username", uid, 1)
	fmt.Println(name, errors.Is(err, batbit.ErrWrongType))
	// Output: User_0 true
}

// Example_metrics demonstrates the in-memory metrics collector.
func Example_metrics() {
	metrics := &batbit.BasicMetricsCollector{}
	vec, err := batbit.NewBatVector(batbit.WithMetricsCollector(metrics))
	if err != nil {
		log.Fatal(err)
	}

	_ = vec.PushBatch([]uint64{1, 2, 3})
	_ = vec.Push(4)

	stats := metrics.GetStats(batbit.ComponentVector)
	fmt.Printf("batches: %d, items: %d, inserts: %d\n", stats.BatchInsertCount, stats.BatchInsertItems, stats.InsertCount)
	// Output: batches: 1, items: 3, inserts: 1
}
