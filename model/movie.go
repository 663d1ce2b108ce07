package model

import "fmt"

// Movie is the stored representation. The HTTP and RESP layers have their
// own shapes and convert at the boundary.
type Movie struct {
	Name    string
	Year    uint16
	WasGood bool
}

func (m Movie) String() string {
	return fmt.Sprintf("%s (%d)", m.Name, m.Year)
}
