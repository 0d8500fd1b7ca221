package noisegen

import "sync"

// Shared generates chunks from any goroutine. It keeps a Generator per
// goroutine in use, so noise caches are reused between chunks without being
// shared between goroutines.
type Shared struct {
	pool sync.Pool
}

// Shared returns a Shared generator for the state.
func (st *RandomState) Shared() *Shared {
	return &Shared{pool: sync.Pool{New: func() any {
		return st.NewGenerator()
	}}}
}

// Generate generates the chunk at pos. It is safe to call from multiple
// goroutines.
func (s *Shared) Generate(pos ChunkPos) *Chunk {
	g := s.pool.Get().(*Generator)
	defer s.pool.Put(g)
	return g.Generate(pos)
}
