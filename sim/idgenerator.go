package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// An IDGenerator mints the identifiers carried by events and processes.
type IDGenerator interface {
	Generate() string
}

var (
	idGeneratorMutex        sync.Mutex
	idGeneratorInstantiated bool
	idGenerator             IDGenerator
)

// UseSequentialIDGenerator selects sequential numeric IDs. Runs that create
// events and processes in the same order then carry identical IDs, which
// keeps traces comparable across runs. This is the default.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator selects globally unique xid IDs. Use it when traces
// from concurrent simulations land in a shared store and must not collide;
// IDs are no longer deterministic.
func UseParallelIDGenerator() {
	setIDGenerator(parallelIDGenerator{})
}

// The generator kind is fixed once the first ID has been minted; switching
// mid-run would break the uniqueness of already-issued IDs.
func setIDGenerator(g IDGenerator) {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGeneratorInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	idGenerator = g
	idGeneratorInstantiated = true
}

// GetIDGenerator returns the generator in use, selecting the sequential one
// if none has been chosen yet.
func GetIDGenerator() IDGenerator {
	if idGeneratorInstantiated {
		return idGenerator
	}

	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if !idGeneratorInstantiated {
		idGenerator = &sequentialIDGenerator{}
		idGeneratorInstantiated = true
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.nextID, 1), 10)
}

type parallelIDGenerator struct{}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
