package superbounds

// Job is a unit of work running on its own goroutine. It starts once every dependency it was
// scheduled with has completed.
type Job struct {
	done chan struct{}
}

func Schedule(fn func(), deps ...*Job) *Job {
	j := &Job{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		for _, d := range deps {
			if d != nil {
				d.Complete()
			}
		}
		fn()
	}()
	return j
}

// Complete blocks until the job has run.
func (j *Job) Complete() {
	<-j.done
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) IsCompleted() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// CombineDependencies returns a job that completes once all of jobs have.
func CombineDependencies(jobs ...*Job) *Job {
	return Schedule(func() {}, jobs...)
}
