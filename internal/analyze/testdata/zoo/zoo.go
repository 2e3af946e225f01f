package zoo

import "time"

// Animal is embedded without being annotated itself.
type Animal struct {
	Legs int
}

// Tail is annotated but declares nothing.
//
//reflect:generate
type Tail struct{}

//reflect:generate
//reflect:genrate
//reflect:parents Anmal, Tail
//reflect:used_types time.Duraton, []string
type Dog struct {
	Animal

	//reflect:metadata "odd"
	Name string
	//reflect:bogus
	Age int
}

//reflect:generate
type Box[T any] struct {
	V T
}

//reflect:generate
type Alias = Tail

//reflect:generate sideways
type Odd struct {
	X int
}

//reflect:class_name Ignored
type Plain struct{}

//reflect:generate
type Egg struct {
	*Hen
}

//reflect:generate
type Hen struct {
	*Egg
}

// Clock uses a package only from metadata.
//
//reflect:generate
type Clock struct {
	//reflect:metadata "tick", time.Second
	Tick int
}
