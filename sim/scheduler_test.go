package sim

import (
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("Scheduler", func() {
	var (
		mockCtrl  *gomock.Controller
		scheduler *Scheduler
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		scheduler = NewScheduler()
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.It("should push the start event when a process starts", func() {
		queue := NewMockEventQueue(mockCtrl)
		scheduler.queue = queue

		queue.EXPECT().Push(gomock.Any()).Do(func(evt *Event) {
			Expect(evt.Kind()).To(Equal("start"))
			Expect(evt.Time()).To(Equal(VTime(0)))
		})

		_, err := scheduler.Start(func(ctx *Context) error { return nil })
		Expect(err).ToNot(HaveOccurred())
	})

	ginkgo.It("should invoke hooks around every event", func() {
		hook := NewMockHook(mockCtrl)
		scheduler.AcceptHook(hook)

		var positions []string
		var beforeKinds []string
		hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
			positions = append(positions, ctx.Pos.Name)
			if ctx.Pos == HookPosBeforeEvent {
				beforeKinds = append(beforeKinds, ctx.Item.(*Event).Kind())
			}
		}).AnyTimes()

		_, err := scheduler.Start(func(ctx *Context) error {
			_, waitErr := ctx.Wait(ctx.Hold(1))
			return waitErr
		})
		Expect(err).ToNot(HaveOccurred())

		Expect(scheduler.SimulateAll()).To(Succeed())

		Expect(beforeKinds).To(Equal([]string{"start", "hold", "terminate"}))
		Expect(positions[0]).To(Equal("ProcessStart"))
		Expect(positions).To(ContainElement("ProcessTerminate"))
	})

	ginkgo.It("should resume simultaneous events in creation order", func() {
		var order []string

		pem := func(ctx *Context, args ...any) (any, error) {
			name := args[0].(string)
			if _, err := ctx.Wait(ctx.Hold(1)); err != nil {
				return nil, err
			}
			order = append(order, name)
			return nil, nil
		}

		_, err := scheduler.Start(ProcessFunc(pem), Args("a"))
		Expect(err).ToNot(HaveOccurred())
		_, err = scheduler.Start(ProcessFunc(pem), Args("b"))
		Expect(err).ToNot(HaveOccurred())
		_, err = scheduler.Start(ProcessFunc(pem), Args("c"))
		Expect(err).ToNot(HaveOccurred())

		Expect(scheduler.SimulateAll()).To(Succeed())
		Expect(order).To(Equal([]string{"a", "b", "c"}))
	})

	ginkgo.It("should never move the clock backward", func() {
		var observed []VTime

		pem := func(ctx *Context, args ...any) (any, error) {
			delta := args[0].(VTime)
			if _, err := ctx.Wait(ctx.Hold(delta)); err != nil {
				return nil, err
			}
			observed = append(observed, ctx.Now())
			return nil, nil
		}

		_, err := scheduler.Start(ProcessFunc(pem), Args(VTime(5)))
		Expect(err).ToNot(HaveOccurred())
		_, err = scheduler.Start(ProcessFunc(pem), Args(VTime(2)))
		Expect(err).ToNot(HaveOccurred())
		_, err = scheduler.Start(ProcessFunc(pem), Args(VTime(9)))
		Expect(err).ToNot(HaveOccurred())

		Expect(scheduler.SimulateAll()).To(Succeed())
		Expect(observed).To(Equal([]VTime{2, 5, 9}))
		Expect(scheduler.CurrentTime()).To(Equal(VTime(9)))
	})

	ginkgo.It("should leave events at the bound in the queue", func() {
		resumed := false

		_, err := scheduler.Start(func(ctx *Context) error {
			if _, waitErr := ctx.Wait(ctx.Hold(3)); waitErr != nil {
				return waitErr
			}
			resumed = true
			return nil
		})
		Expect(err).ToNot(HaveOccurred())

		Expect(scheduler.Simulate(3)).To(Succeed())
		Expect(resumed).To(BeFalse())
		Expect(scheduler.CurrentTime()).To(Equal(VTime(3)))

		Expect(scheduler.SimulateAll()).To(Succeed())
		Expect(resumed).To(BeTrue())
	})
})
