package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// batchJob pairs one input with the output it owns.
type batchJob struct {
	input  string
	output string
}

// planBatch maps every input under root to its output. With outDir set the
// input's path relative to root is kept below outDir. Two inputs that would
// write the same output are rejected before anything runs.
func planBatch(root, outDir string, inputs []string) ([]batchJob, error) {
	jobs := make([]batchJob, len(inputs))
	owner := make(map[string]string, len(inputs))
	var errs []error
	for i, in := range inputs {
		out := outputPath(in, "")
		if outDir != "" {
			rel, err := filepath.Rel(root, out)
			if err != nil {
				return nil, fmt.Errorf("failed to place output for %s: %w", in, err)
			}
			out = filepath.Join(outDir, rel)
		}
		key := filepath.Clean(out)
		if prev, taken := owner[key]; taken {
			errs = append(errs, fmt.Errorf("%s and %s would both write %s", prev, in, out))
			continue
		}
		owner[key] = in
		jobs[i] = batchJob{input: in, output: out}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("conflicting batch outputs: %w", errors.Join(errs...))
	}
	return jobs, nil
}

// runBatch transforms the planned jobs concurrently. Errors are joined in
// input order.
func (a *App) runBatch(ctx context.Context, spec *Spec, jobs []batchJob) error {
	errs := make([]error, len(jobs))
	queue := make(chan int)

	workers := max(1, min(a.config.Workers, len(jobs)))
	a.logger.Debug("Starting worker pool.", "workers", workers, "files", len(jobs))

	var wg sync.WaitGroup
	for id := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.worker(ctx, id, spec, jobs, queue, errs)
		}()
	}

	sent := 0
feed:
	for ; sent < len(jobs); sent++ {
		select {
		case queue <- sent:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	for i := sent; i < len(jobs); i++ {
		errs[i] = fmt.Errorf("%s: skipped: %w", jobs[i].input, ctx.Err())
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	a.logger.Info("Batch finished.", "files", len(jobs), "failed", failed)
	return errors.Join(errs...)
}

// worker is the processing loop of a single batch worker.
func (a *App) worker(ctx context.Context, workerID int, spec *Spec, jobs []batchJob, queue <-chan int, errs []error) {
	logger := a.logger.With("workerID", workerID)
	logger.Debug("Worker started.")

	for i := range queue {
		job := jobs[i]
		if ctx.Err() != nil {
			logger.Warn("Context canceled, skipping file.", "input", job.input)
			errs[i] = fmt.Errorf("%s: skipped: %w", job.input, ctx.Err())
			continue
		}

		logger.Debug("Worker picked up file.", "input", job.input, "output", job.output)
		err := os.MkdirAll(filepath.Dir(job.output), 0o755)
		if err == nil {
			err = a.Transform(ctx, spec, job.input, job.output)
		}
		if err != nil {
			logger.Error("Transformation failed.", "input", job.input, "error", err)
			errs[i] = fmt.Errorf("%s: %w", job.input, err)
		}
	}
	logger.Debug("Worker finished.")
}
