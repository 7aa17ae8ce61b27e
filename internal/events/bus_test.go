package events

import (
	"reflect"
	"testing"
)

func Test_Bus_DeliversInOrder(t *testing.T) {
	b := NewBus[string]()
	var got []string
	b.Subscribe("a", func(v string) { got = append(got, "first:"+v) })
	b.Subscribe("a", func(v string) { got = append(got, "second:"+v) })
	b.Subscribe("b", func(v string) { got = append(got, "other:"+v) })

	b.Publish("a", "x")

	want := []string{"first:x", "second:x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func Test_Bus_WildcardReceivesEverything(t *testing.T) {
	b := NewBus[int]()
	var sum int
	b.Subscribe(Wildcard, func(v int) { sum += v })

	b.Publish("one", 1)
	b.Publish("two", 2)

	if sum != 3 {
		t.Errorf("sum = %d, want 3", sum)
	}
}

func Test_Bus_WildcardPublishNotDoubled(t *testing.T) {
	b := NewBus[int]()
	var calls int
	b.Subscribe(Wildcard, func(int) { calls++ })

	b.Publish(Wildcard, 1)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func Test_Subscription_UnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	b := NewBus[string]()
	var got []string
	handler := func(v string) { got = append(got, v) }

	first := b.Subscribe("t", handler)
	b.Subscribe("t", handler)

	first.Unsubscribe()
	first.Unsubscribe()

	if n := b.Len("t"); n != 1 {
		t.Fatalf("Len = %d, want 1", n)
	}

	b.Publish("t", "v")
	if len(got) != 1 {
		t.Errorf("delivered %d times, want 1", len(got))
	}
}

func Test_Subscription_UnsubscribeInsideHandler(t *testing.T) {
	b := NewBus[string]()
	var calls int
	var sub *Subscription
	sub = b.Subscribe("t", func(string) {
		calls++
		sub.Unsubscribe()
	})

	b.Publish("t", "a")
	b.Publish("t", "b")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if b.Len("t") != 0 {
		t.Errorf("Len = %d, want 0", b.Len("t"))
	}
}

func Test_Bus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	b := NewBus[string]()
	var reached bool
	b.Subscribe("t", func(string) { panic("boom") })
	b.Subscribe("t", func(string) { reached = true })

	b.Publish("t", "x")

	if !reached {
		t.Error("second handler did not run")
	}
}

func Test_Subscription_NilIsSafe(t *testing.T) {
	var s *Subscription
	s.Unsubscribe()
}
