package sim

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ensemble", func() {
	It("runs every job to its frame bound", func() {
		recs := []*Recorder{NewRecorder(1), NewRecorder(1), NewRecorder(1)}
		jobs := make([]Job, len(recs))
		for i, r := range recs {
			jobs[i] = Job{World: newWorld(), Dt: 0.01, Frames: 50 * (i + 1), Observers: []Observer{r}}
		}

		Expect(NewEnsemble(2).Run(context.Background(), jobs)).To(Succeed())
		for i, r := range recs {
			Expect(r.Samples).To(HaveLen(50 * (i + 1)))
			Expect(jobs[i].World.Time()).To(BeNumerically("~", 0.5*float64(i+1), 1e-6))
		}
	})

	It("gives identical worlds identical results", func() {
		a, b := NewRecorder(1), NewRecorder(1)
		jobs := []Job{
			{World: newWorld(), Dt: 1.0 / 60, Frames: 300, Observers: []Observer{a}},
			{World: newWorld(), Dt: 1.0 / 60, Frames: 300, Observers: []Observer{b}},
		}
		Expect(NewEnsemble(0).Run(context.Background(), jobs)).To(Succeed())
		Expect(a.Contacts).To(Equal(b.Contacts))
		Expect(a.Samples).To(Equal(b.Samples))
	})

	It("reports an invalid job", func() {
		jobs := []Job{
			{World: newWorld(), Dt: 0.01, Frames: 10},
			{World: newWorld(), Dt: 0, Frames: 10},
		}
		err := NewEnsemble(1).Run(context.Background(), jobs)
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("job 1"))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewEnsemble(2).Run(ctx, []Job{{World: newWorld(), Dt: 0.01, Frames: 10}})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("defaults the worker count", func() {
		Expect(NewEnsemble(0).Workers()).To(BeNumerically(">=", 1))
	})
})
