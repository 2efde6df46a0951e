// Package toposort orders the chunks of one compilation so that every chunk
// comes after the chunks it depends on.
//
// Edges are derived from each chunk's parent ids. A parent id that does not
// name a chunk of the same compilation (for example a chunk excluded from the
// build) is ignored. Chunks without an ordering constraint between them keep
// their input order.
package toposort

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/quantmind-br/assets-manifest-go/internal/domain"
)

// CycleError indicates the chunk graph contains a cycle
type CycleError struct {
	// Chunks holds the ids left with unresolved parents. It contains every
	// chunk on a cycle and may contain chunks downstream of one.
	Chunks []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", domain.ErrCyclicDependency, strings.Join(e.Chunks, " -> "))
}

// Unwrap returns domain.ErrCyclicDependency
func (e *CycleError) Unwrap() error {
	return domain.ErrCyclicDependency
}

// Sort returns the chunks in dependency order using Kahn's algorithm. Among
// the chunks ready at each step the one listed first in the input is taken,
// so a chunk that becomes ready late still precedes later unconstrained
// chunks. The input slice is not modified.
func Sort(chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	// Later duplicates win the lookup, matching a plain map assignment.
	lookup := make(map[string]int, len(chunks))
	for i, c := range chunks {
		lookup[c.ID.Key()] = i
	}

	adjacency := make([][]int, len(chunks))
	inDegree := make([]int, len(chunks))
	for child, c := range chunks {
		for _, parentID := range c.Parents {
			parent, ok := lookup[parentID.Key()]
			if !ok {
				continue
			}
			adjacency[parent] = append(adjacency[parent], child)
			inDegree[child]++
		}
	}

	ready := make(indexHeap, 0, len(chunks))
	for i := range chunks {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	heap.Init(&ready)

	sorted := make([]domain.Chunk, 0, len(chunks))
	for ready.Len() > 0 {
		node := heap.Pop(&ready).(int)
		sorted = append(sorted, chunks[node])

		for _, next := range adjacency[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(&ready, next)
			}
		}
	}

	if len(sorted) != len(chunks) {
		var remaining []string
		for i, c := range chunks {
			if inDegree[i] > 0 {
				remaining = append(remaining, c.ID.String())
			}
		}
		return nil, &CycleError{Chunks: remaining}
	}

	return sorted, nil
}

// indexHeap is a min-heap of input positions
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) {
	*h = append(*h, x.(int))
}

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Edges returns the resolved (parent, child) id pairs in input order.
// Dangling parent ids are omitted.
func Edges(chunks []domain.Chunk) [][2]domain.ChunkID {
	known := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		known[c.ID.Key()] = true
	}

	var edges [][2]domain.ChunkID
	for _, c := range chunks {
		for _, parentID := range c.Parents {
			if known[parentID.Key()] {
				edges = append(edges, [2]domain.ChunkID{parentID, c.ID})
			}
		}
	}
	return edges
}
