// Package workload holds the built-in code fragments the CLI can time.
package workload

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Workload is a named fragment factory. New builds any state the fragment
// needs, outside the timed region, and returns the fragment.
type Workload struct {
	Name        string
	Description string
	New         func() func()
}

// sink keeps results observable so loops are not optimized away.
var sink int

const dataLen = 1000

var registry = map[string]Workload{
	"noop": {
		Name:        "noop",
		Description: "empty fragment, measures the bracket alone",
		New:         func() func() { return func() {} },
	},
	"arithmetic": {
		Name:        "arithmetic",
		Description: "100 multiply-add iterations",
		New: func() func() {
			return func() {
				r := 0
				for i := 0; i < 100; i++ {
					r += i * 2
				}
				sink = r
			}
		},
	},
	"slice-append": {
		Name:        "slice-append",
		Description: "append 100 ints to a slice holding 100, then truncate back",
		New: func() func() {
			s := make([]int, 0, 200)
			for i := 0; i < 100; i++ {
				s = append(s, i)
			}
			return func() {
				for i := 100; i < 200; i++ {
					s = append(s, i)
				}
				s = s[:100]
			}
		},
	},
	"sequential": {
		Name:        "sequential",
		Description: "sum 1000 ints in order",
		New: func() func() {
			data := sequence(dataLen)
			return func() {
				sum := 0
				for i := range data {
					sum += data[i]
				}
				sink = sum
			}
		},
	},
	"random": {
		Name:        "random",
		Description: "sum 1000 ints through a shuffled index",
		New: func() func() {
			data := sequence(dataLen)
			indices := sequence(dataLen)
			rand.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
			return func() {
				sum := 0
				for _, idx := range indices {
					sum += data[idx]
				}
				sink = sum
			}
		},
	},
	"cache-line": {
		Name:        "cache-line",
		Description: "touch one int per 64-byte cache line",
		New: func() func() {
			data := make([]int32, dataLen)
			for i := range data {
				data[i] = int32(i)
			}
			return func() {
				sum := int32(0)
				for i := 0; i < len(data); i += 16 {
					sum += data[i]
				}
				sink = int(sum)
			}
		},
	},
	"shift": {
		Name:        "shift",
		Description: "single shift of a stored value",
		New: func() func() {
			x := 1
			return func() {
				x <<= 1
				sink = x
				x = 1
			}
		},
	},
	"square": {
		Name:        "square",
		Description: "single multiply-add of a stored value",
		New: func() func() {
			return func() {
				x := 42
				x = x*x + 1
				sink = x
			}
		},
	},
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// All returns every workload sorted by name.
func All() []Workload {
	out := make([]Workload, 0, len(registry))
	for _, w := range registry {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a workload by name, case-insensitively.
func Lookup(name string) (Workload, error) {
	w, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(registry))
		for _, w := range All() {
			names = append(names, w.Name)
		}
		return Workload{}, fmt.Errorf("unknown workload %q (available: %s)", name, strings.Join(names, ", "))
	}
	return w, nil
}
