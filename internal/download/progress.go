package download

import "io"

// progressWriter counts bytes written to w and reports the fraction done.
type progressWriter struct {
	w        io.Writer
	expected int64
	written  int64
	last     float64
	reported bool
	fn       ProgressFunc
	onWrite  func(written int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.onWrite != nil {
		p.onWrite(p.written)
	}
	p.report(fraction(p.written, p.expected))
	if err != nil {
		return n, &writeError{err: err}
	}
	return n, nil
}

func (p *progressWriter) report(f float64) {
	if p.fn == nil || p.expected <= 0 {
		return
	}
	if p.reported && f <= p.last {
		return
	}
	p.last = f
	p.reported = true
	p.fn(f)
}

// finish reports 1.0 if progress was being tracked and has not reached it.
func (p *progressWriter) finish() {
	if p.reported && p.last < 1 {
		p.report(1)
	}
}
