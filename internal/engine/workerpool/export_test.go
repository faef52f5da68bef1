package workerpool

// WorkerCount returns the number of registered remote workers.
func (p *Pool) WorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.remotes)
}
