package sim

import (
	"math/rand"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func popAllInOrder(queue EventQueue) {
	var prev *Event
	for queue.Len() > 0 {
		evt := queue.Pop()
		if prev != nil {
			if prev.Time() == evt.Time() {
				Expect(prev.Seq()).To(BeNumerically("<", evt.Seq()))
			} else {
				Expect(prev.Time()).To(BeNumerically("<", evt.Time()))
			}
		}
		prev = evt
	}
}

var _ = ginkgo.Describe("EventQueueImpl", func() {
	var queue *EventQueueImpl

	ginkgo.BeforeEach(func() {
		queue = NewEventQueue()
	})

	ginkgo.It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			queue.Push(&Event{
				time: VTime(rand.Float64() / 1e8),
				seq:  uint64(i),
			})
		}

		Expect(queue.Len()).To(Equal(numEvents))
		popAllInOrder(queue)
	})

	ginkgo.It("should break time ties by sequence number", func() {
		queue.Push(&Event{time: 2.0, seq: 7})
		queue.Push(&Event{time: 2.0, seq: 3})
		queue.Push(&Event{time: 1.0, seq: 9})
		queue.Push(&Event{time: 2.0, seq: 5})

		Expect(queue.Pop().Seq()).To(Equal(uint64(9)))
		Expect(queue.Pop().Seq()).To(Equal(uint64(3)))
		Expect(queue.Pop().Seq()).To(Equal(uint64(5)))
		Expect(queue.Pop().Seq()).To(Equal(uint64(7)))
	})

	ginkgo.It("should peek without removing", func() {
		queue.Push(&Event{time: 1.0, seq: 1})
		Expect(queue.Peek().Seq()).To(Equal(uint64(1)))
		Expect(queue.Len()).To(Equal(1))
	})
})

var _ = ginkgo.Describe("InsertionQueue", func() {
	var queue *InsertionQueue

	ginkgo.BeforeEach(func() {
		queue = NewInsertionQueue()
	})

	ginkgo.It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			queue.Push(&Event{
				time: VTime(rand.Float64() / 1e8),
				seq:  uint64(i),
			})
		}

		Expect(queue.Len()).To(Equal(numEvents))
		popAllInOrder(queue)
	})

	ginkgo.It("should break time ties by sequence number", func() {
		queue.Push(&Event{time: 2.0, seq: 7})
		queue.Push(&Event{time: 2.0, seq: 3})
		queue.Push(&Event{time: 2.0, seq: 5})

		Expect(queue.Pop().Seq()).To(Equal(uint64(3)))
		Expect(queue.Pop().Seq()).To(Equal(uint64(5)))
		Expect(queue.Pop().Seq()).To(Equal(uint64(7)))
	})
})
