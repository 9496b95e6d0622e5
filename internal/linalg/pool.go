package linalg

import "sync"

// VectorPool recycles scratch vectors of one fixed width.
type VectorPool struct {
	pool sync.Pool
	size int
}

func NewVectorPool(width int) *VectorPool {
	return &VectorPool{
		size: width,
		pool: sync.Pool{
			New: func() interface{} {
				return make(Vector, width)
			},
		},
	}
}

func (p *VectorPool) Get() Vector {
	return p.pool.Get().(Vector)
}

// Put zeroes v and returns it to the pool. Vectors of another width are
// dropped.
func (p *VectorPool) Put(v Vector) {
	if len(v) == p.size {
		for i := range v {
			v[i] = 0
		}
		p.pool.Put(v)
	}
}

func (p *VectorPool) GetAndCopy(src Vector) Vector {
	dst := p.Get()
	copy(dst, src)
	return dst
}
