package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Queue is a priority queue of Jobs with per-key coalescing, per-key
// claim exclusivity and per-key rate limiting. All methods are safe for
// concurrent use.
type Queue struct {
	mu sync.Mutex

	heap    jobHeap
	index   map[Key]*jobHeapEntry // queued jobs only, by key
	claimed map[Key]Priority      // jobs currently out for build, by priority
	pending map[Key]*Job          // deferred pushes against a claimed key, by key

	nextSeq uint64

	// minInterval bounds how often the same key may be dispatched;
	// limiters holds each key's single-token bucket, created lazily on
	// its first dispatch, that enforces it.
	minInterval time.Duration
	limiters    map[Key]*rate.Limiter

	notEmpty *sync.Cond
	closed   bool
}

// NewQueue returns an empty Queue that rate-limits redispatch of the
// same key to no more than once per minInterval.
func NewQueue(minInterval time.Duration) *Queue {
	q := &Queue{
		index:       make(map[Key]*jobHeapEntry),
		claimed:     make(map[Key]Priority),
		pending:     make(map[Key]*Job),
		limiters:    make(map[Key]*rate.Limiter),
		minInterval: minInterval,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push enqueues job, or, if a job for the same Key is already queued,
// merges job into it: the stronger (lower-valued) Priority wins and the
// Revision/Version are replaced with job's, so a tile that changes
// again before its rebuild is dispatched only ever rebuilds once, at
// its latest content (P4). Pushing a job for a key that is currently
// claimed (out being built) does not queue a second, concurrently
// dispatchable job for the same key (I1): it is coalesced into the
// key's pending deferral slot the same way an already-queued job would
// be, and only pushed onto the heap once the in-flight build releases
// the claim via Done.
func (q *Queue) Push(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e, ok := q.index[job.Key]; ok {
		if job.Priority < e.job.Priority {
			e.job.Priority = job.Priority
		}
		e.job.Revision = job.Revision
		e.job.Version = job.Version
		heap.Fix(&q.heap, e.index)
		q.notEmpty.Signal()
		return
	}

	if _, ok := q.claimed[job.Key]; ok {
		if p, ok := q.pending[job.Key]; ok {
			if job.Priority < p.Priority {
				p.Priority = job.Priority
			}
			p.Revision = job.Revision
			p.Version = job.Version
			return
		}
		j := job
		q.pending[job.Key] = &j
		return
	}

	job.seq = q.nextSeq
	q.nextSeq++
	e := &jobHeapEntry{job: job}
	q.index[job.Key] = e
	heap.Push(&q.heap, e)
	q.notEmpty.Signal()
}

// Pop blocks until a job is available, dispatchable (past its
// rate-limit window) and not already claimed, claims it, and returns
// it. It returns ok=false once Close has been called and no job is
// available; callers run Pop in a loop from a dedicated goroutine per
// worker and exit when ok is false.
func (q *Queue) Pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed {
			return Job{}, false
		}
		e := q.peekReady()
		if e == nil {
			if len(q.heap) == 0 {
				q.notEmpty.Wait()
				continue
			}
			// Everything queued is still inside its rate-limit window;
			// wake up again once the soonest one clears rather than
			// relying on a Push to ever arrive.
			wait := q.soonestEligible()
			q.mu.Unlock()
			time.Sleep(wait)
			q.mu.Lock()
			continue
		}
		heap.Remove(&q.heap, e.index)
		delete(q.index, e.job.Key)
		q.claimed[e.job.Key] = e.job.Priority
		q.limiterFor(e.job.Key).AllowN(time.Now(), 1)
		return e.job, true
	}
}

// Close marks the queue as shut down: every blocked and future Pop call
// returns ok=false immediately.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notEmpty.Broadcast()
}

// limiterFor returns key's dispatch-rate limiter, creating a fresh
// single-token bucket (full, so a key's first dispatch is never
// throttled) on first use. Caller holds q.mu.
func (q *Queue) limiterFor(key Key) *rate.Limiter {
	l, ok := q.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(q.minInterval), 1)
		q.limiters[key] = l
	}
	return l
}

// soonestEligible returns how long until the nearest-to-ready queued
// entry clears its rate limit. Caller holds q.mu.
func (q *Queue) soonestEligible() time.Duration {
	now := time.Now()
	min := q.minInterval
	for _, e := range q.heap {
		l, ok := q.limiters[e.job.Key]
		if !ok {
			return 0
		}
		tokens := l.TokensAt(now)
		if tokens >= 1 {
			return 0
		}
		wait := time.Duration((1 - tokens) / float64(l.Limit()) * float64(time.Second))
		if wait < min {
			min = wait
		}
	}
	if min < time.Millisecond {
		min = time.Millisecond
	}
	return min
}

// peekReady returns the best (lowest priority, then earliest-queued)
// entry that is past its rate-limit window, or nil if none qualifies
// yet. The heap's array representation is only ordered at its root, so
// entries below the root are scanned linearly; queues are expected to
// stay small (one pending job per resident tile) so this is cheap.
// Caller holds q.mu.
func (q *Queue) peekReady() *jobHeapEntry {
	now := time.Now()
	var best *jobHeapEntry
	for _, e := range q.heap {
		if l, ok := q.limiters[e.job.Key]; ok && l.TokensAt(now) < 1 {
			continue
		}
		if best == nil || jobLess(e, best) {
			best = e
		}
	}
	return best
}

// Done releases the claim held on key, after the build for it (whether
// it succeeded, failed, or was found stale) has finished. If a Push
// arrived for key while it was claimed, that deferred job is pushed
// onto the heap now, so it becomes dispatchable to the next idle
// worker instead of having been silently dropped.
func (q *Queue) Done(key Key) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.claimed, key)

	j, ok := q.pending[key]
	if !ok {
		return
	}
	delete(q.pending, key)

	j.seq = q.nextSeq
	q.nextSeq++
	e := &jobHeapEntry{job: *j}
	q.index[key] = e
	heap.Push(&q.heap, e)
	q.notEmpty.Signal()
}

// CancelAgent drops every queued or pending job belonging to agent.
// Jobs already claimed by a worker are left to finish; their results
// are simply discarded by the updater once it notices the agent is
// gone.
func (q *Queue) CancelAgent(matches func(Key) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var toRemove []*jobHeapEntry
	for k, e := range q.index {
		if matches(k) {
			toRemove = append(toRemove, e)
		}
	}
	for _, e := range toRemove {
		heap.Remove(&q.heap, e.index)
		delete(q.index, e.job.Key)
	}

	for k := range q.pending {
		if matches(k) {
			delete(q.pending, k)
		}
	}
}

// Len returns the number of queued (not claimed) jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Pending counts jobs, queued, currently claimed (out for build), or
// deferred against a claimed key, for which matches returns true.
// Callers use this to implement condition-specific waits (e.g. "every
// PriorityPlayer/PriorityNear job has committed") without the scheduler needing to
// know what a caller considers interesting.
func (q *Queue) Pending(matches func(Key, Priority) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for k, e := range q.index {
		if matches(k, e.job.Priority) {
			n++
		}
	}
	for k, p := range q.claimed {
		if matches(k, p) {
			n++
		}
	}
	for k, j := range q.pending {
		if matches(k, j.Priority) {
			n++
		}
	}
	return n
}

// Idle reports whether the queue has no queued, claimed or deferred
// jobs at all.
func (q *Queue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap) == 0 && len(q.claimed) == 0 && len(q.pending) == 0
}

// jobHeapEntry tracks a Job's current index within the heap so Push can
// call heap.Fix on coalesced updates.
type jobHeapEntry struct {
	job   Job
	index int
}

type jobHeap []*jobHeapEntry

func (h jobHeap) Len() int { return len(h) }

func jobLess(a, b *jobHeapEntry) bool {
	if a.job.Priority != b.job.Priority {
		return a.job.Priority < b.job.Priority
	}
	return a.job.seq < b.job.seq
}

func (h jobHeap) Less(i, j int) bool { return jobLess(h[i], h[j]) }

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *jobHeap) Push(x any) {
	e := x.(*jobHeapEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
