package proxy

import "sync"

// readBufferSize is the size of the single read used for client requests
// and of the chunks used when draining origin responses.
const readBufferSize = 8192

type bufferPool struct {
	pool sync.Pool
}

func newBufferPool(size int) *bufferPool {
	bp := &bufferPool{}
	bp.pool.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return bp
}

func (p *bufferPool) Get() []byte {
	b := p.pool.Get().(*[]byte)
	return *b
}

func (p *bufferPool) Put(b []byte) {
	// The &b forces a small heap allocation; unavoidable when putting a
	// non-pointer into an interface.
	p.pool.Put(&b)
}
