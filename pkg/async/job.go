package async

// Job runs f on its own goroutine. The channel yields f's error and is then
// closed.
func Job(f func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- f()
		close(done)
	}()
	return done
}

// Wait collects the result of every job, in order.
func Wait(jobs ...<-chan error) []error {
	errs := make([]error, len(jobs))
	for i, j := range jobs {
		errs[i] = <-j
	}
	return errs
}
