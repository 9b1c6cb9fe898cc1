package simulation

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/simlab-dev/desmat/sim"
)

var _ = Describe("Simulation", func() {
	var simulation *Simulation

	BeforeEach(func() {
		simulation = MakeBuilder().Build()
	})

	AfterEach(func() {
		simulation.Terminate()
	})

	It("should run a process to completion", func() {
		var observed []sim.VTime

		_, err := simulation.Start(func(ctx *sim.Context) error {
			for i := 0; i < 2; i++ {
				observed = append(observed, ctx.Now())
				if _, waitErr := ctx.Wait(ctx.Hold(2)); waitErr != nil {
					return waitErr
				}
			}
			return nil
		})
		Expect(err).ToNot(HaveOccurred())

		Expect(simulation.SimulateAll()).To(Succeed())
		Expect(observed).To(Equal([]sim.VTime{0, 2}))
		Expect(simulation.GetScheduler().CurrentTime()).To(Equal(sim.VTime(4)))
	})

	Context("Builder with tracing", func() {
		var tracedSim *Simulation

		BeforeEach(func() {
			tracedSim = MakeBuilder().
				WithTracing().
				WithOutputFileName("test_trace_output").
				Build()
		})

		AfterEach(func() {
			tracedSim.Terminate()
			os.Remove("test_trace_output.sqlite3")
		})

		It("should record the event trace", func() {
			_, err := tracedSim.Start(func(ctx *sim.Context) error {
				_, waitErr := ctx.Wait(ctx.Hold(1))
				return waitErr
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(tracedSim.SimulateAll()).To(Succeed())
			tracedSim.Terminate()

			recorder := tracedSim.GetDataRecorder()
			Expect(recorder.ListTables()).To(ContainElement("event_trace"))
		})
	})

	It("should reject a monitor port without monitoring", func() {
		Expect(func() {
			MakeBuilder().WithMonitorPort(8080).Build()
		}).To(Panic())
	})
})
