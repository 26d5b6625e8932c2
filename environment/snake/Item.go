package snake

import "time"

// Phase is the lifecycle stage of an item
type Phase int

const (
	Active Phase = iota
	Blinking
)

func (p Phase) String() string {
	if p == Blinking {
		return "Blinking"
	}
	return "Active"
}

// Item is a consumable placed on the grid (food or poison). An absent
// item has Present == false and its other fields are meaningless.
type Item struct {
	Pos       Point
	Present   bool
	Phase     Phase
	SpawnedAt time.Duration
	BlinkAt   time.Duration
}

// place puts the item at pos in the Active phase, or removes it from
// the grid if ok is false
func (i *Item) place(pos Point, ok bool, now time.Duration) {
	*i = Item{Pos: pos, Present: ok, Phase: Active, SpawnedAt: now}
}

// tick advances the item's lifecycle to time now. An Active item
// starts blinking once it has been Active for longer than lifetime;
// a Blinking item is moved by respawn once it has blinked for longer
// than blink.
func (i *Item) tick(now, lifetime, blink time.Duration,
	respawn func() (Point, bool)) {
	if !i.Present {
		return
	}

	switch i.Phase {
	case Active:
		if now-i.SpawnedAt > lifetime {
			i.Phase = Blinking
			i.BlinkAt = now
		}
	case Blinking:
		if now-i.BlinkAt > blink {
			pos, ok := respawn()
			i.place(pos, ok, now)
		}
	}
}
