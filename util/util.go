package util

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var R *rand.Rand
var guidTracker map[string]int
var lock *sync.Mutex

func init() {
	R = rand.New(rand.NewSource(time.Now().UnixNano()))
	guidTracker = map[string]int{}
	lock = &sync.Mutex{}
}

// NewRand returns an independent seeded source. Strategies take one per
// instance so simulation runs can be replayed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func ResetGuids() {
	lock.Lock()
	guidTracker = map[string]int{}
	lock.Unlock()
}

// NewGuid hands out sequential ids per prefix ("buyer-1", "buyer-2", ...).
// Used by tests and the simulation harness where stable names matter.
func NewGuid(prefix string) string {
	lock.Lock()
	defer lock.Unlock()
	guidTracker[prefix] = guidTracker[prefix] + 1
	return fmt.Sprintf("%s-%d", prefix, guidTracker[prefix])
}

func RandomIntIn(min, max int) int {
	return R.Intn(max-min+1) + min
}

func RandomBudgetIn(min, max float64) float64 {
	return min + R.Float64()*(max-min)
}
