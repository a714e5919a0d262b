// Package amplifier connects Intcode machines into chains, where the output
// of each stage is the input of the next.
//
// Every stage runs its own copy of the same program, and first receives its
// phase setting. The first stage then receives the input signal. In a
// feedback chain the output of the last stage is routed back to the first,
// round after round, until every stage has halted.
package amplifier

import (
	"context"
	"iter"
	"slices"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/io"
)

var log = commonlog.GetLogger("intcode.amplifier")

// Chain is a sequence of amplifiers running the same program.
type Chain struct {
	Verbose  bool       // If set, enables verbose logging.
	Image    cpu.Memory // Program run by every stage.
	Capacity int        // Pipe capacity between concurrent stages.
}

// NewChain creates a chain running the image.
func NewChain(image cpu.Memory) (chain *Chain) {
	chain = &Chain{
		Image: image,
	}

	return
}

// stage creates the machine for one stage, with its phase setting queued.
func (chain *Chain) stage(phase int64) (amp *cpu.Cpu) {
	amp = cpu.NewCpu(chain.Image, phase)
	amp.Verbose = chain.Verbose

	return
}

// Series runs each stage to completion in turn, feeding each stage's last
// output to the next. It returns the last output of the final stage.
func (chain *Chain) Series(phases []int64, signal int64) (output int64, err error) {
	if len(phases) == 0 {
		err = ErrNoStages
		return
	}

	for n, phase := range phases {
		amp := chain.stage(phase)
		err = amp.Input.Send(signal)
		if err != nil {
			err = &ErrStage{Stage: n, Err: err}
			return
		}

		_, err = amp.Run()
		if err != nil {
			err = &ErrStage{Stage: n, Err: err}
			return
		}

		signal = amp.Diagnostic
		if chain.Verbose {
			log.Infof("amplifier: stage %d phase %d output %d", n, phase, signal)
		}
	}

	output = signal

	return
}

// Feedback drives a feedback chain from a single goroutine. Each stage is
// resumed in turn until it produces an output, which is queued for the next
// stage. Rounds repeat until every stage has halted, and the last output of
// the final stage is returned.
func (chain *Chain) Feedback(phases []int64, signal int64) (output int64, err error) {
	if len(phases) == 0 {
		err = ErrNoStages
		return
	}

	amps := make([]*cpu.Cpu, len(phases))
	for n, phase := range phases {
		amps[n] = chain.stage(phase)
	}

	err = amps[0].Input.Send(signal)
	if err != nil {
		err = &ErrStage{Stage: 0, Err: err}
		return
	}

	for round := 0; ; round++ {
		halted := 0
		for n, amp := range amps {
			var state cpu.State
			state, err = amp.RunToOutput()
			if err != nil {
				err = &ErrStage{Stage: n, Err: err}
				return
			}

			switch state {
			case cpu.STATE_OUTPUT:
				next := amps[(n+1)%len(amps)]
				err = next.Input.Send(amp.Diagnostic)
				if err != nil {
					err = &ErrStage{Stage: n, Err: err}
					return
				}
			case cpu.STATE_HALTED:
				halted++
			}
		}

		if chain.Verbose {
			log.Infof("amplifier: round %d, %d of %d halted", round, halted, len(amps))
		}

		if halted == len(amps) {
			break
		}
	}

	output = amps[len(amps)-1].Diagnostic

	return
}

// FeedbackConcurrent drives a feedback chain with one goroutine per stage,
// connected by bounded pipes. The first stage fault cancels all stages.
func (chain *Chain) FeedbackConcurrent(ctx context.Context, phases []int64, signal int64) (output int64, err error) {
	if len(phases) == 0 {
		err = ErrNoStages
		return
	}

	group, ctx := errgroup.WithContext(ctx)

	// Every pipe holds the phase setting; the first also holds the signal.
	capacity := max(chain.Capacity, 2)
	pipes := make([]*io.Pipe, len(phases))
	for n, phase := range phases {
		pipes[n] = io.NewPipe(ctx, capacity)
		err = pipes[n].Send(phase)
		if err != nil {
			return
		}
	}
	err = pipes[0].Send(signal)
	if err != nil {
		return
	}

	amps := make([]*cpu.Cpu, len(phases))
	for n := range amps {
		in := pipes[n]
		out := pipes[(n+1)%len(pipes)]

		amp := cpu.NewCpu(chain.Image)
		amp.Verbose = chain.Verbose
		amp.Input = in
		amp.Output = out
		amps[n] = amp

		group.Go(func() (err error) {
			_, err = amp.Run()
			if err != nil {
				// The group cancels the other stages.
				err = &ErrStage{Stage: n, Err: err}
				return
			}

			// Wake neighbours still waiting on this stage.
			in.Close()
			out.Close()

			if chain.Verbose {
				log.Infof("amplifier: stage %d halted after %d ticks", n, amp.Ticks)
			}

			return
		})
	}

	err = group.Wait()
	if err != nil {
		return
	}

	output = amps[len(amps)-1].Diagnostic

	return
}

// Runner evaluates a chain for one ordering of phase settings.
type Runner func(phases []int64) (output int64, err error)

// Best tries every ordering of the phase settings, and returns the largest
// output along with the ordering that produced it.
func Best(phases []int64, run Runner) (best int64, setting []int64, err error) {
	if len(phases) == 0 {
		err = ErrNoStages
		return
	}

	for perm := range Permutations(phases) {
		var output int64
		output, err = run(perm)
		if err != nil {
			return
		}
		if setting == nil || output > best {
			best = output
			setting = perm
		}
	}

	return
}

// Permutations returns an iterator over every ordering of the values.
// Each yielded slice is a fresh copy.
func Permutations(values []int64) iter.Seq[[]int64] {
	return func(yield func(perm []int64) bool) {
		perm := slices.Clone(values)

		var permute func(k int) bool
		permute = func(k int) bool {
			if k == len(perm) {
				return yield(slices.Clone(perm))
			}
			for i := k; i < len(perm); i++ {
				perm[k], perm[i] = perm[i], perm[k]
				if !permute(k + 1) {
					return false
				}
				perm[k], perm[i] = perm[i], perm[k]
			}
			return true
		}

		permute(0)
	}
}
