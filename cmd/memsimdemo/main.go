package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Gaurav-tech229/Memory-Allocator"
)

func main() {
	cfg := memsim.DefaultConfig(4 * memsim.MB)
	ledger := memsim.NewLedger(slog.Default())

	sup, err := memsim.NewSupervisor(cfg, ledger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "new supervisor:", err)
		os.Exit(1)
	}
	defer sup.Close()

	sup.EnableAdaptive(true)

	var live []uint64
	for i := 0; i < 150; i++ {
		size := uint64(64)
		if i%7 == 0 {
			size = 4096
		}
		addr, err := sup.Allocate(size)
		if err != nil {
			fmt.Println("allocate failed:", err)
			continue
		}
		live = append(live, addr)

		if i%3 == 0 && len(live) > 0 {
			victim := live[0]
			live = live[1:]
			if err := sup.Deallocate(victim); err != nil {
				fmt.Println("deallocate failed:", err)
			}
		}
	}

	metrics := sup.GetPerformanceMetrics()
	fmt.Printf("fragmentationRatio=%.4f totalFree=%d largestFree=%d pools=%d\n",
		metrics.FragmentationRatio, sup.GetTotalFreeMemory(), sup.GetLargestFreeBlock(), len(sup.Pools().Pools()))

	if ledger.HasLeaks() {
		fmt.Println(ledger.LeakReport())
	} else {
		fmt.Println("no leaks detected")
	}
}
