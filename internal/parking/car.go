package parking

// car is one link of a queue or lane chain. A car belongs to exactly one
// chain at a time and is dropped as soon as it is removed from it.
type car struct {
	id   int
	next *car
}

func newCar(id int) *car {
	return &car{id: id}
}
