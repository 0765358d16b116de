// Command credlock-calibrate measures scrypt derivation time on the
// current hardware and recommends the smallest cost factor whose single
// derivation meets a target duration.
//
// Run:
//
//	go run ./cmd/credlock-calibrate -target 150ms
//
// Pick the recommended cost for Config.Digest.TargetCost. Re-run on new
// hardware generations; the recommendation only goes up over time.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/credlock/credlock/digest"
)

func main() {
	var (
		target  = flag.Duration("target", 150*time.Millisecond, "desired duration of one derivation")
		minCost = flag.Int("min-cost", 10, "lowest cost factor to measure")
		maxCost = flag.Int("max-cost", 20, "highest cost factor to measure")
		rounds  = flag.Int("rounds", 3, "derivations averaged per cost factor")
	)
	flag.Parse()

	if *minCost < digest.MinSupportedCost || *maxCost > digest.MaxSupportedCost || *minCost > *maxCost {
		fmt.Fprintf(os.Stderr, "cost range must be within [%d, %d]\n",
			digest.MinSupportedCost, digest.MaxSupportedCost)
		os.Exit(2)
	}
	if *rounds <= 0 {
		fmt.Fprintln(os.Stderr, "rounds must be > 0")
		os.Exit(2)
	}

	salt, err := digest.NewSalt()
	if err != nil {
		fmt.Fprintf(os.Stderr, "salt draw failed: %v\n", err)
		os.Exit(1)
	}

	deriver := digest.Scrypt{}
	secret := []byte("calibration-probe-secret")

	fmt.Printf("target %s, averaging %d round(s) per cost\n\n", *target, *rounds)
	fmt.Println("cost  avg duration")

	recommended := -1
	for cost := *minCost; cost <= *maxCost; cost++ {
		avg, err := measure(deriver, secret, salt, cost, *rounds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "derivation at cost %d failed: %v\n", cost, err)
			os.Exit(1)
		}

		marker := ""
		if recommended == -1 && avg >= *target {
			recommended = cost
			marker = "  <- recommended"
		}
		fmt.Printf("%4d  %12s%s\n", cost, avg.Round(100*time.Microsecond), marker)

		// Derivation time doubles per cost step; once past 4x the target
		// there is nothing left to learn.
		if avg > 4**target {
			break
		}
	}

	fmt.Println()
	if recommended == -1 {
		fmt.Printf("no cost in [%d, %d] reached %s; raise -max-cost\n", *minCost, *maxCost, *target)
		os.Exit(1)
	}
	fmt.Printf("set Config.Digest.TargetCost = %d\n", recommended)
}

func measure(deriver digest.Scrypt, secret, salt []byte, cost, rounds int) (time.Duration, error) {
	var total time.Duration
	for i := 0; i < rounds; i++ {
		start := time.Now()
		if _, err := deriver.Derive(secret, salt, cost); err != nil {
			return 0, err
		}
		total += time.Since(start)
	}
	return total / time.Duration(rounds), nil
}
