package ratelimit_test

import (
	"fmt"
	"time"

	"logsynth/internal/core"
	"logsynth/internal/ratelimit"
)

func ExampleParseBurst() {
	schedule, err := ratelimit.ParseBurst("100:5s,10:25s")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, seg := range schedule {
		fmt.Printf("%.0f lines/sec for %v\n", seg.Rate, seg.Span)
	}
	fmt.Println("total:", schedule.TotalSpan())
	// Output:
	// 100 lines/sec for 5s
	// 10 lines/sec for 25s
	// total: 30s
}

func ExamplePacer_Deadline() {
	clock := core.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	pacer, _ := ratelimit.NewPacer(clock, 4)

	for i := 0; i < 3; i++ {
		fmt.Println(pacer.Deadline(i).Sub(pacer.Start()))
	}
	// Output:
	// 0s
	// 250ms
	// 500ms
}
