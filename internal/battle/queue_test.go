package battle

import "testing"

func queueCombatant(id string, speed int) *Combatant {
	basis := testBasis()
	basis.Spd = speed
	return NewCombatant(id, 50, basis)
}

func TestQueueSortOrder(t *testing.T) {
	q := NewActionQueue(NewDeterministicRNG("seed", "order"))
	slow := queueCombatant("slow", 50)
	fast := queueCombatant("fast", 120)
	switcher := queueCombatant("switcher", 10)
	quick := &Definition{ID: "quick_attack", Priority: 1}
	tackle := &Definition{ID: "tackle"}

	q.Push(&Action{Kind: ActionAttack, User: fast, Slot: NewMoveSlot(tackle)})
	q.Push(&Action{Kind: ActionAttack, User: slow, Slot: NewMoveSlot(quick)})
	q.Push(&Action{Kind: ActionSwitch, User: switcher})
	q.Sort(nil)

	order := []string{}
	for _, a := range q.Actions() {
		order = append(order, a.User.ID)
	}
	expected := []string{"switcher", "slow", "fast"}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, order)
		}
	}
}

func TestQueueTieBreakIsDeterministic(t *testing.T) {
	run := func() []string {
		q := NewActionQueue(NewDeterministicRNG("seed", "order"))
		for _, id := range []string{"a", "b", "c", "d"} {
			q.Push(&Action{Kind: ActionAttack, User: queueCombatant(id, 80), Slot: NewMoveSlot(&Definition{ID: "tackle"})})
		}
		q.Sort(nil)
		var ids []string
		for _, a := range q.Actions() {
			ids = append(ids, a.User.ID)
		}
		return ids
	}
	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected identical tie-break order, got %v and %v", first, second)
		}
	}
}

func TestQueueReordering(t *testing.T) {
	q := NewActionQueue(nil)
	a := q.Push(&Action{Kind: ActionAttack, User: queueCombatant("a", 1)})
	b := q.Push(&Action{Kind: ActionAttack, User: queueCombatant("b", 1)})
	c := q.Push(&Action{Kind: ActionAttack, User: queueCombatant("c", 1)})

	if err := q.MoveToFront(c.ID); err != nil {
		t.Fatalf("move to front: %v", err)
	}
	if err := q.MoveToBack(a.ID); err != nil {
		t.Fatalf("move to back: %v", err)
	}
	got := q.Actions()
	if got[0] != c || got[1] != b || got[2] != a {
		t.Fatalf("expected c,b,a order")
	}
	if _, err := q.Remove("missing"); err != ErrUnknownAction {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, ok := q.Find(b.ID); !ok {
		t.Fatalf("expected to find b by id")
	}
	next, _ := q.Next()
	if next != c || q.Len() != 2 {
		t.Fatalf("expected to pop c leaving 2")
	}
}
